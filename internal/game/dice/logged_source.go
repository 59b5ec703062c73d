package dice

import "go.uber.org/zap"

// LoggedSource wraps a Source and logs every draw at debug level with the
// requested bound and the value produced.
type LoggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource creates a Source that draws from src and logs each draw to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) *LoggedSource {
	if src == nil {
		panic("dice: NewLoggedSource precondition violated: src must be non-nil")
	}
	if logger == nil {
		panic("dice: NewLoggedSource precondition violated: logger must be non-nil")
	}
	return &LoggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped Source and logs the result.
//
// Precondition: n > 0.
// Postcondition: Returns the wrapped Source's value unchanged.
func (l *LoggedSource) Intn(n int) int {
	v := l.src.Intn(n)
	l.logger.Debug("dice draw",
		zap.Int("n", n),
		zap.Int("value", v),
	)
	return v
}
