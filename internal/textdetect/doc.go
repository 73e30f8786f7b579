// Package textdetect finds and erases lettering on comic pages.
//
// Detection is consumed through the narrow Detector interface: given a batch
// of images it returns, per image, the polygons that cover text. The package
// ships a Tesseract implementation (via gosseract/v2) that reports word boxes
// as four-point polygons; tests and callers can substitute their own.
//
// # Prerequisites
//
// The Tesseract detector needs the Tesseract library and language data:
//   - Ubuntu/Debian: apt-get install libtesseract-dev tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Batching
//
// Masker always sends the whole batch to the detector in one call, so a
// detector can amortize its setup (the Tesseract detector opens one client per
// batch). Calls on one Masker are serialized by a mutex unless the detector
// reports itself safe for concurrent use through ConcurrentSafe.
//
// # Masks
//
// Text masks are *image.Alpha values in the page's zero-origin coordinate
// space; 0xFF marks text pixels. Erase overwrites marked pixels with the fill
// colour, which is white unless configured otherwise.
package textdetect
