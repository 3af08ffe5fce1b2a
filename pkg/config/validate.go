package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/newtron-network/swreconcile/pkg/util"
)

// configValidate checks field syntax only. Cross references and semantic
// bounds are the reconciler's job.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("mac48", validateMAC48)
}

// validateMAC48 accepts only 48-bit MAC addresses; the stock "mac" tag also
// accepts EUI-64 and InfiniBand forms.
func validateMAC48(fl validator.FieldLevel) bool {
	_, err := util.ParseMAC(fl.Field().String())
	return err == nil
}

// Validate runs format validation over cfg and returns a
// *util.ValidationError listing every failing field.
func Validate(cfg *SwitchConfig) error {
	err := configValidate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}

	v := &util.ValidationBuilder{}
	for _, fe := range verrs {
		if fe.Param() != "" {
			v.AddErrorf("%s: value '%v' fails '%s=%s'", fe.Namespace(), fe.Value(), fe.Tag(), fe.Param())
		} else {
			v.AddErrorf("%s: value '%v' fails '%s'", fe.Namespace(), fe.Value(), fe.Tag())
		}
	}
	return v.Build()
}
