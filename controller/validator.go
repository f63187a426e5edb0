package controller

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// trans translates validator errors for the response envelope.
var trans ut.Translator

// InitTrans hooks an English translator into gin's validator and makes field
// names in messages follow the json tags the client actually sent.
func InitTrans() (err error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enT := en.New()
	uni := ut.New(enT, enT)
	trans, ok = uni.GetTranslator("en")
	if !ok {
		return fmt.Errorf("uni.GetTranslator(en) failed")
	}
	return enTranslations.RegisterDefaultTranslations(v, trans)
}

// removeTopStruct strips the struct name prefix from translated field errors
// ("RegisterForm.email" -> "email").
func removeTopStruct(fields map[string]string) map[string]string {
	res := map[string]string{}
	for field, err := range fields {
		res[field[strings.Index(field, ".")+1:]] = err
	}
	return res
}
