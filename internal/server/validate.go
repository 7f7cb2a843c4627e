package server

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/sttts/kmanage/pkg/manifest"
	"github.com/sttts/kmanage/pkg/workload"
)

// requestValidator is shared by all handlers. Validators are safe for
// concurrent use.
var requestValidator = validator.New()

func init() {
	for tag, fn := range map[string]validator.Func{
		"k8s_manifest":      validateK8sManifest,
		"dns1123_label":     validateDNS1123Label,
		"dns1123_subdomain": validateDNS1123Subdomain,
	} {
		if err := requestValidator.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
		}
	}
}

// validateK8sManifest requires apiVersion and kind. metadata.name may be
// missing, the path name fills it in.
func validateK8sManifest(fl validator.FieldLevel) bool {
	obj, ok := fl.Field().Interface().(map[string]interface{})
	if !ok {
		return false
	}
	if v, ok := obj["apiVersion"].(string); !ok || v == "" {
		return false
	}
	if v, ok := obj["kind"].(string); !ok || v == "" {
		return false
	}
	if md, found := obj["metadata"]; found && md != nil {
		if _, ok := md.(map[string]interface{}); !ok {
			return false
		}
	}
	return true
}

func validateDNS1123Label(fl validator.FieldLevel) bool {
	return len(validation.IsDNS1123Label(fl.Field().String())) == 0
}

func validateDNS1123Subdomain(fl validator.FieldLevel) bool {
	return len(validation.IsDNS1123Subdomain(fl.Field().String())) == 0
}

// target is the resource addressed by a request path.
type target struct {
	Kind      string `validate:"required,oneof=pod deployment"`
	Namespace string `validate:"required,dns1123_label"`
	Name      string `validate:"required,dns1123_subdomain"`
}

type manifestRequest struct {
	target
	Manifest map[string]interface{} `validate:"required,k8s_manifest"`
}

type draftRequest struct {
	YAMLType string `json:"yamlType" validate:"required,oneof=pod deployment"`
	Query    string `json:"query" validate:"required,max=4096"`
}

// validateStruct runs the validator and reports failures as a BadRequest.
func validateStruct(v interface{}) error {
	err := requestValidator.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apierrors.NewBadRequest(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fieldName(fe), fe.Tag()))
	}
	return apierrors.NewBadRequest(strings.Join(msgs, ", "))
}

func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "Namespace":
		return "namespace"
	case "Name":
		return "name"
	case "Kind", "YAMLType":
		return "kind"
	case "Manifest":
		return "manifest"
	case "Query":
		return "query"
	}
	return fe.Field()
}

// validateManifest parses doc and checks it against the addressed resource.
// The path name stands in for a missing metadata.name.
func validateManifest(t target, doc []byte) error {
	if err := validateStruct(&t); err != nil {
		return err
	}
	u, err := manifest.Validate(string(doc))
	if err != nil {
		return err
	}
	if err := validateStruct(&manifestRequest{target: t, Manifest: u.Object}); err != nil {
		return err
	}

	check := u.DeepCopy()
	if check.GetName() == "" {
		check.SetName(t.Name)
	}
	if err := manifest.CheckConsistency(check, workload.Kind(t.Kind)); err != nil {
		return apierrors.NewBadRequest(fmt.Sprintf("invalid %s manifest: %v", t.Kind, err))
	}
	return nil
}
