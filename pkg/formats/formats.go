// Package formats provides parsers for 3D viewer asset file formats.
//
// Note: OBJ (Wavefront geometry) is fully implemented in obj.go
// Note: TGA (Truevision image container) is fully implemented in tga.go
package formats

import "go.uber.org/zap"

// logger receives non-fatal parse diagnostics. Parsing stays silent unless
// the host application installs a logger with SetLogger.
var logger = zap.NewNop()

// SetLogger installs the logger used for parse warnings. Passing nil
// restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
