package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return InvalidInputError(err.Error())
		}
		var sb strings.Builder
		for i, fe := range validationErrors {
			if i > 0 {
				sb.WriteString("; ")
			}
			sb.WriteString(fmt.Sprintf("field '%s' failed on '%s'", fe.Field(), fe.Tag()))
		}
		return InvalidInputError(sb.String())
	}
	return nil
}
