package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// An unquoted identifier or a double-quoted one, optionally schema-qualified.
var tableNameRe = regexp.MustCompile(`^(?:"[^"\x00]+"|[A-Za-z_][A-Za-z0-9_$]*)(?:\.(?:"[^"\x00]+"|[A-Za-z_][A-Za-z0-9_$]*))?$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("table_name", validateTableName)
	}
}

func validateTableName(fl validator.FieldLevel) bool {
	return IsTableName(fl.Field().String())
}

// IsTableName reports whether s is a plain or schema-qualified identifier.
func IsTableName(s string) bool {
	return tableNameRe.MatchString(s)
}
