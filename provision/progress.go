package provision

import (
	"io"

	"go.uber.org/zap"
)

type progressWriter struct {
	dst     io.Writer
	total   int64
	written int64
	fn      ProgressFunc
}

func (w *progressWriter) Write(b []byte) (int, error) {
	n, err := w.dst.Write(b)
	w.written += int64(n)
	if w.fn != nil {
		w.fn(w.written, w.total)
	}
	return n, err
}

// LogProgress reports download progress through logger in 10% steps, or
// every 4 MiB when the total size is unknown.
func LogProgress(logger *zap.Logger) ProgressFunc {
	const unknownStep = 4 << 20
	last := int64(-1)
	return func(written, total int64) {
		if total <= 0 {
			if step := written / unknownStep; step > last {
				last = step
				logger.Info("downloading model", zap.Int64("bytes", written))
			}
			return
		}
		pct := written * 100 / total
		if step := pct / 10; step > last {
			last = step
			logger.Info("downloading model", zap.Int64("percent", step*10), zap.Int64("bytes", written), zap.Int64("total", total))
		}
	}
}
