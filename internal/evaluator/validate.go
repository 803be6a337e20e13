package evaluator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/prop-evaluator/internal/models"
)

var requestValidator = validator.New()

// ValidateRequest checks required fields and derives the parsed request.
// A missing numeric threshold is not an error; the parsed line is NaN.
func ValidateRequest(req models.EvaluationRequest, now time.Time) (models.ParsedRequest, error) {
	req.Sport = strings.TrimSpace(req.Sport)
	req.SubjectName = strings.TrimSpace(req.SubjectName)
	req.StatisticLine = strings.TrimSpace(req.StatisticLine)

	if err := requestValidator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return models.ParsedRequest{}, models.NewEvalError(models.KindInvalidInput, "validate", requiredFieldError(verrs[0].Field()))
		}
		return models.ParsedRequest{}, models.NewEvalError(models.KindInvalidInput, "validate", err)
	}

	sport, ok := models.ParseSport(req.Sport)
	if !ok {
		return models.ParsedRequest{}, models.NewEvalError(models.KindInvalidInput, "validate",
			fmt.Errorf("%w: %q", models.ErrUnsupportedSport, req.Sport))
	}

	stat, line, ok := models.ParseStatisticLine(req.StatisticLine)
	if !ok {
		return models.ParsedRequest{}, models.NewEvalError(models.KindInvalidInput, "validate",
			fmt.Errorf("%w: %q", models.ErrUnknownStatistic, req.StatisticLine))
	}
	if !stat.SupportedBy(sport) {
		return models.ParsedRequest{}, models.NewEvalError(models.KindInvalidInput, "validate",
			fmt.Errorf("%w: %s is not offered for %s", models.ErrUnknownStatistic, stat, sport))
	}

	eventDate := now
	if req.EventStartTime.Valid {
		eventDate = req.EventStartTime.Time
	}

	return models.ParsedRequest{
		Request:   req,
		Sport:     sport,
		Statistic: stat,
		Line:      line,
		EventDate: eventDate.UTC(),
	}, nil
}

func requiredFieldError(field string) error {
	switch field {
	case "Sport":
		return models.ErrMissingSport
	case "SubjectName":
		return models.ErrMissingSubject
	default:
		return models.ErrMissingStatisticLine
	}
}
