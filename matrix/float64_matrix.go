package matrix

// internal Float64 matrix representation which is mainly used for
// probability tables and message buffers
type Float64Matrix struct {
	nrow int
	ncol int
	data []float64
}

// NewFloat64Matrix creates a new Float64Matrix with r rows and c
// columns. if r or c is not positive, it will panic. The data layout
// is in row major order as in Int32Matrix.
func NewFloat64Matrix(r, c int) *Float64Matrix {
	if r <= 0 || c <= 0 {
		panic(ErrBadShape)
	}
	return &Float64Matrix{
		nrow: r,
		ncol: c,
		data: make([]float64, r*c),
	}
}

// get the shape of the matrix
func (m *Float64Matrix) Shape() (int, int) {
	return m.nrow, m.ncol
}

// get the [r, c]-th element of the matrix
func (m *Float64Matrix) Get(r, c int) float64 {
	if r < 0 || r >= m.nrow || c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol+c]
}

// set val to the [r, c]-th element of the matrix
func (m *Float64Matrix) Set(r, c int, val float64) {
	if r < 0 || r >= m.nrow || c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	m.data[r*m.ncol+c] = val
}

// RowView returns the r-th row as a slice sharing the underlying
// storage, so writes through the slice mutate the matrix
func (m *Float64Matrix) RowView(r int) []float64 {
	if r < 0 || r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol : (r+1)*m.ncol]
}

// GetCol returns a copy of the c-th column of the matrix
func (m *Float64Matrix) GetCol(c int) []float64 {
	if c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	column := make([]float64, m.nrow)
	for r := 0; r < m.nrow; r += 1 {
		column[r] = m.data[r*m.ncol+c]
	}
	return column
}

// Clone returns a deep copy of the matrix
func (m *Float64Matrix) Clone() *Float64Matrix {
	out := NewFloat64Matrix(m.nrow, m.ncol)
	copy(out.data, m.data)
	return out
}
