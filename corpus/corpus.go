package corpus

import (
	"bufio"
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/iamredrum/treecat/matrix"
)

var (
	ErrNoColumns    = errors.New("corpus: no feature columns")
	ErrRaggedRows   = errors.New("corpus: feature columns disagree on row count")
	ErrNegativeCell = errors.New("corpus: negative count")
)

// Corpus holds one table of multinomial count data. Columns[v] is an
// N x K_v count matrix for feature v, where N is shared across all
// features and K_v is the number of categories of feature v.
type Corpus struct {
	NumRows int
	Columns []*matrix.Int32Matrix
}

// New wraps feature columns into a Corpus, checking that every column
// has the same number of rows and only non-negative counts
func New(columns []*matrix.Int32Matrix) (*Corpus, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}
	numRows, _ := columns[0].Shape()
	for _, column := range columns {
		r, c := column.Shape()
		if r != numRows {
			return nil, ErrRaggedRows
		}
		for i := 0; i < r; i += 1 {
			for j := 0; j < c; j += 1 {
				if column.Get(i, j) < 0 {
					return nil, ErrNegativeCell
				}
			}
		}
	}
	return &Corpus{
		NumRows: numRows,
		Columns: columns,
	}, nil
}

// get the number of features
func (this *Corpus) NumFeatures() int {
	return len(this.Columns)
}

// get the number of categories of feature v
func (this *Corpus) Dim(v int) int {
	_, c := this.Columns[v].Shape()
	return c
}

// Row returns views of the row's per-feature count vectors, sharing
// storage with the corpus
func (this *Corpus) Row(rowID int) [][]int32 {
	row := make([][]int32, len(this.Columns))
	for v, column := range this.Columns {
		row[v] = column.RowView(rowID)
	}
	return row
}

// ZeroRow returns a freshly allocated all-zero row with the corpus
// feature dimensions
func (this *Corpus) ZeroRow() [][]int32 {
	row := make([][]int32, len(this.Columns))
	for v := range this.Columns {
		row[v] = make([]int32, this.Dim(v))
	}
	return row
}

// load training data from file, the file format should be like:
// [rowId featId:catId:count featId:catId:count ...]
// row, feature and category ids are zero based and the table shape is
// inferred from the largest ids seen. The function will panic if any
// id or count cannot be parsed
func Load(fn string) (*Corpus, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	type cell struct {
		row, feat, cat int
		count          int32
	}
	var cells []cell
	maxRow, maxFeat := -1, -1
	var maxCat []int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		vals := strings.Split(line, " ")
		if len(vals) < 2 {
			log.Printf("bad row: %s", line)
			continue
		}

		rowID, err := strconv.Atoi(vals[0])
		if err != nil {
			panic(err)
		}
		if rowID > maxRow {
			maxRow = rowID
		}

		for _, kv := range vals[1:] {
			fcc := strings.Split(kv, ":")
			if len(fcc) != 3 {
				log.Printf("bad cell: %s", kv)
				continue
			}
			featID, err := strconv.Atoi(fcc[0])
			if err != nil {
				panic(err)
			}
			catID, err := strconv.Atoi(fcc[1])
			if err != nil {
				panic(err)
			}
			count, err := strconv.ParseInt(fcc[2], 10, 32)
			if err != nil {
				panic(err)
			}
			for featID > maxFeat {
				maxFeat += 1
				maxCat = append(maxCat, -1)
			}
			if catID > maxCat[featID] {
				maxCat[featID] = catID
			}
			cells = append(cells, cell{rowID, featID, catID, int32(count)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if maxRow < 0 || maxFeat < 0 {
		return nil, ErrNoColumns
	}

	columns := make([]*matrix.Int32Matrix, maxFeat+1)
	for v := range columns {
		columns[v] = matrix.NewInt32Matrix(maxRow+1, maxCat[v]+1)
	}
	for _, c := range cells {
		columns[c.feat].Incr(c.row, c.cat, c.count)
	}

	log.Printf("number of rows %d", maxRow+1)
	log.Printf("number of features %d", maxFeat+1)

	return New(columns)
}
