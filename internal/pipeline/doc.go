// Package pipeline drives panel extraction over a folder of page images.
//
// An Extractor is built once from a Config and reused. Each run moves through
// the states LOADING, PER_PAGE_PROCESSING, AGGREGATING and DONE; any error
// aborts the run and nothing partial is returned or persisted.
//
// Per page, in ascending path order:
//
//  1. Text detection over the whole batch, when text is removed or speech
//     bubbles are reported. The detector is called exactly once per run.
//  2. Speech-bubble detection on the untouched page (DetectBubbles).
//  3. Text erasure (unless KeepText).
//  4. Paper-texture check (FilterPaper); textured pages are left out.
//  5. Panel crops written next to the pages (unless JustContours).
//  6. Contour extraction, area filtering and normalization into panels
//     sorted top to bottom.
//
// Pages may be processed by a bounded worker pool (Workers > 1). Results are
// stored by page index, so the output order never depends on scheduling.
package pipeline
