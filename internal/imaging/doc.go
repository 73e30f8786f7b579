// Package imaging provides the pixel-level building blocks of the panel
// extractor: page loading, channel projection, polygon rasterization, masked
// cropping, colour parsing and debug overlays.
//
// All operations work with standard Go image types and use a coordinate system
// where (0,0) is at the top-left corner, X increases rightward, and Y increases
// downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - Rectangles follow image.Rectangle: Min is inclusive, Max is exclusive
//   - Polygon vertices (PointF) live on the continuous plane; integer values
//     fall on pixel corners and pixel (x, y) has its centre at (x+0.5, y+0.5)
//
// # Page Images
//
// Pages are decoded into zero-origin *image.NRGBA values regardless of their
// on-disk format (PNG, JPEG, GIF, WebP, BMP, TIFF). Everything downstream can
// therefore index Pix directly and treat mask and page coordinates as equal.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. Paint and
// CropMasked write to their own outputs only; Paint mutates its argument and
// must not race with readers of the same image.
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Crop regions outside image bounds or empty
//   - File I/O errors during image loading
//   - Encoding errors during image output
//   - Malformed hex colours
package imaging
