package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/brunovinte3/controlsst/internal/compliance"
	"github.com/brunovinte3/controlsst/internal/models"
)

// Defaults applied when a source column is missing entirely.
const (
	DefaultName    = "Sem Nome"
	DefaultField   = "-"
	DefaultCompany = "Empresa Padrão"
)

// Row is one raw external record: header name -> cell value. Values are
// whatever the transport decoded (strings, numbers, nil).
type Row map[string]interface{}

// Normalizer turns raw rows into canonical employees using the course catalog
// as its field dictionary.
type Normalizer struct {
	courses []models.Course
}

// New builds a Normalizer over the given catalog.
func New(courses []models.Course) *Normalizer {
	return &Normalizer{courses: courses}
}

// Employee maps a single row onto the canonical shape. idx is the zero-based
// row position, used only to fabricate a registration when the source has
// none. Malformed cells degrade (absent date, NOT_TRAINED) instead of failing
// the row; the function never returns an error.
func (n *Normalizer) Employee(row Row, idx int, today time.Time) models.Employee {
	canon := make(map[string]interface{}, len(row))
	for k, v := range row {
		canon[Key(k)] = v
	}

	registration := firstString(canon, "MATRICULA", "REGISTRO")
	if registration == "" {
		registration = fmt.Sprintf("ID-%d", idx)
	}

	trainings := make(models.TrainingMap, len(n.courses))
	for _, course := range n.courses {
		completion, ok := compliance.ParseFlexibleDate(canon[Key(course.ID)])
		var cptr *time.Time
		if ok {
			cptr = &completion
		}
		trainings[course.ID] = compliance.Evaluate(course.ID, cptr, course.ValidityYears, today)
	}

	id := stringValue(row["id"])
	if id == "" {
		id = registration
	}

	emp := models.Employee{
		ID:           id,
		Registration: registration,
		Name:         fallback(firstString(canon, "NOMECOMPLETO", "NOME"), DefaultName),
		Role:         fallback(firstString(canon, "FUNCAO", "CARGO"), DefaultField),
		Sector:       fallback(firstString(canon, "SETOR", "DEPARTAMENTO"), DefaultField),
		Company:      fallback(firstString(canon, "EMPRESA", "UNIDADE"), DefaultCompany),
		PhotoURL:     firstString(canon, "FOTO", "URLFOTO"),
		Trainings:    trainings,
	}
	return emp
}

// Employees maps every row; one output employee per input row, always.
func (n *Normalizer) Employees(rows []Row, today time.Time) []models.Employee {
	out := make([]models.Employee, 0, len(rows))
	for i, row := range rows {
		out = append(out, n.Employee(row, i, today))
	}
	return out
}

// Recognized reports whether the batch resolved at least one real name,
// guarding against imports whose headers matched nothing.
func Recognized(employees []models.Employee) bool {
	for _, e := range employees {
		if e.Name != DefaultName {
			return true
		}
	}
	return false
}

func firstString(canon map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(canon[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		t := trimSentinel(s)
		return t
	case float64:
		if s == float64(int64(s)) {
			return fmt.Sprintf("%d", int64(s))
		}
		return fmt.Sprintf("%v", s)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func trimSentinel(s string) string {
	t := strings.TrimSpace(s)
	if t == "-" || strings.EqualFold(t, "n/a") {
		return ""
	}
	return t
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
