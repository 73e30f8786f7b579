// Package segment splits a comic or manga page into panels.
//
// The segmentation works on the page's gutter network rather than on the
// panels themselves: panels are whatever dark regions remain once the
// dominant connected background region is removed.
//
// # Pipeline
//
//  1. BackgroundMask: project to one channel, smooth with a 5-tap Gaussian,
//     binarize at a high threshold (default 230), paint a black frame around
//     the page and keep the second-largest connected component. The largest
//     is normally the dark pixels (frame plus panel art); the second is the
//     gutter network.
//  2. FindCandidates: re-whiten the frame on a copy of the mask and trace its
//     border hierarchy: the hole border around each 4-connected dark region,
//     and the outer border of each 8-connected white region cut off from the
//     frame. The latter are the panels of a page whose mask came out
//     inverted, which happens when art covers more of the page than gutter.
//  3. Window.Filter: keep candidates whose boundary area lies inside the
//     configured fraction-of-page window.
//  4. Normalize: convert bounding boxes into percent-of-page Panel records.
//  5. CropPanel (optional): crop a candidate and paint everything outside its
//     silhouette with a fill colour.
//
// # Bounding Boxes, Not Shapes
//
// Panel records always describe the candidate's axis-aligned bounding box.
// The path string looks like a free polygon but is always the five-point
// closed rectangle. Only CropPanel uses the traced boundary itself.
//
// # Coordinate System
//
// Masks share the zero-origin coordinate space of the page. Candidate bounds
// follow image.Rectangle (Max exclusive). Panel records use percent of page
// width and height in [0, 100].
//
// # Determinism
//
// Every step is deterministic: components are labelled in raster order,
// ties in component size are broken by label, and candidates are reported in
// the raster order of their border's starting pixel.
package segment
