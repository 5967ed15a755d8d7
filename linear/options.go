package linear

// Option はSolverを設定する関数
type Option func(*Solver)

// WithTolerance は特異値をゼロとみなす閾値を最大特異値に対する比で設定する
func WithTolerance(tol float64) Option {
	return func(s *Solver) {
		s.tol = tol
	}
}

// WithTruncation は閾値以下の特異値をエラーにせず切り捨てる
func WithTruncation(truncate bool) Option {
	return func(s *Solver) {
		s.truncate = truncate
	}
}
