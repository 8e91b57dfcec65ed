package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/sma-marks/internal/models"
	appErrors "github.com/noah-isme/sma-marks/pkg/errors"
)

type fieldSetter func(marks *models.StudentMarks, raw string) error

var fieldSetters = map[models.UpdatableField]fieldSetter{
	models.FieldName: func(m *models.StudentMarks, raw string) error {
		m.Name = strings.TrimSpace(raw)
		return nil
	},
	models.FieldCW1:  markSetter(func(m *models.StudentMarks, v int) { m.CW1 = v }),
	models.FieldCW2:  markSetter(func(m *models.StudentMarks, v int) { m.CW2 = v }),
	models.FieldCW3:  markSetter(func(m *models.StudentMarks, v int) { m.CW3 = v }),
	models.FieldExam: markSetter(func(m *models.StudentMarks, v int) { m.Exam = v }),
}

func markSetter(set func(*models.StudentMarks, int)) fieldSetter {
	return func(m *models.StudentMarks, raw string) error {
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "mark must be a whole number")
		}
		set(m, v)
		return nil
	}
}

// ParseField resolves a user-supplied field name into an UpdatableField.
func ParseField(raw string) (models.UpdatableField, error) {
	field := models.UpdatableField(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := fieldSetters[field]; !ok {
		return "", appErrors.Clone(appErrors.ErrUnknownField, "unknown field "+strconv.Quote(raw)+"; expected one of name, cw1, cw2, cw3, exam")
	}
	return field, nil
}
