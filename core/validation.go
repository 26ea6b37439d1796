package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/signalsfoundry/horizon/model"
)

// ErrInvalidHeight is wrapped by every height validation failure.
var ErrInvalidHeight = errors.New("invalid height")

// ObserverHeightError reports a non-positive observer height.
type ObserverHeightError struct {
	Value float64
}

func (e *ObserverHeightError) Error() string {
	return fmt.Sprintf("observer must have positive non-zero height: %v", e.Value)
}

func (e *ObserverHeightError) Unwrap() error { return ErrInvalidHeight }

// SubjectHeightError reports a non-positive subject height.
type SubjectHeightError struct {
	Value float64
}

func (e *SubjectHeightError) Error() string {
	return fmt.Sprintf("subject must have positive non-zero height: %v", e.Value)
}

func (e *SubjectHeightError) Unwrap() error { return ErrInvalidHeight }

var (
	validateOnce sync.Once
	validate     *validator.Validate
	translator   ut.Translator
)

func heightValidator() (*validator.Validate, ut.Translator) {
	validateOnce.Do(func() {
		validate = validator.New()
		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, translator)
	})
	return validate, translator
}

// ValidateHeights checks that the observer height is strictly positive and
// that the subject height, when present, is strictly positive too. The
// observer is checked first.
func ValidateHeights(in model.HeightInput) error {
	v, _ := heightValidator()
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate heights: %w", err)
	}

	var subjectErr error
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Observer":
			return &ObserverHeightError{Value: in.Observer}
		case "Subject":
			subjectErr = &SubjectHeightError{Value: in.SubjectHeight()}
		}
	}
	if subjectErr != nil {
		return subjectErr
	}
	return fmt.Errorf("%w: %s", ErrInvalidHeight, verrs.Error())
}

// DescribeValidation renders validator failures as English sentences, one per
// failing field. It returns nil when the input is valid.
func DescribeValidation(in model.HeightInput) []string {
	v, trans := heightValidator()
	var verrs validator.ValidationErrors
	if !errors.As(v.Struct(in), &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Translate(trans))
	}
	return out
}
