package matrix

// internal Int32 matrix representation
type Int32Matrix struct {
	nrow int
	ncol int
	data []int32
}

// NewInt32Matrix creates a new Int32Matrix with r rows and c columns.
// if r or c is not positive, it will panic. An int32 slice is used as
// the underlying storage and the data layout is in row major order,
// i.e. the (i*c + j)-th element in the data slice is the [i, j]-th
// element in the matrix. Counts are signed so that decrementing a
// corrupted tally underflows loudly instead of wrapping around.
func NewInt32Matrix(r, c int) *Int32Matrix {
	if r <= 0 || c <= 0 {
		panic(ErrBadShape)
	}
	return &Int32Matrix{
		nrow: r,
		ncol: c,
		data: make([]int32, r*c),
	}
}

// get the shape of the matrix
func (m *Int32Matrix) Shape() (int, int) {
	return m.nrow, m.ncol
}

// get the [r, c]-th element of the matrix
func (m *Int32Matrix) Get(r, c int) int32 {
	if r < 0 || r >= m.nrow || c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol+c]
}

// set val to the [r, c]-th element of the matrix
func (m *Int32Matrix) Set(r, c int, val int32) {
	if r < 0 || r >= m.nrow || c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	m.data[r*m.ncol+c] = val
}

// increment the [r, c]-th element of the matrix by val
func (m *Int32Matrix) Incr(r, c int, val int32) {
	if r < 0 || r >= m.nrow || c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	m.data[r*m.ncol+c] += val
}

// decrement the [r, c]-th element of the matrix by val
func (m *Int32Matrix) Decr(r, c int, val int32) {
	if r < 0 || r >= m.nrow || c < 0 || c >= m.ncol {
		panic(ErrIndexOutOfRange)
	}
	m.data[r*m.ncol+c] -= val
}

// RowView returns the r-th row as a slice sharing the underlying
// storage, so writes through the slice mutate the matrix
func (m *Int32Matrix) RowView(r int) []int32 {
	if r < 0 || r >= m.nrow {
		panic(ErrIndexOutOfRange)
	}
	return m.data[r*m.ncol : (r+1)*m.ncol]
}

// Clone returns a deep copy of the matrix
func (m *Int32Matrix) Clone() *Int32Matrix {
	out := NewInt32Matrix(m.nrow, m.ncol)
	copy(out.data, m.data)
	return out
}

// Equal reports whether two matrices have the same shape and elements
func (m *Int32Matrix) Equal(other *Int32Matrix) bool {
	if m.nrow != other.nrow || m.ncol != other.ncol {
		return false
	}
	for i, v := range m.data {
		if v != other.data[i] {
			return false
		}
	}
	return true
}
