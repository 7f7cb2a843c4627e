package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-logr/logr"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/pkg/manifest"
)

// toStatus maps err onto an API status. Backend errors already carry one.
func toStatus(err error) metav1.Status {
	var status apierrors.APIStatus
	switch {
	case errors.As(err, &status):
		s := status.Status()
		if s.Code == 0 {
			s.Code = http.StatusInternalServerError
		}
		return s
	case manifest.IsParseError(err):
		return apierrors.NewBadRequest(err.Error()).ErrStatus
	case errors.Is(err, assistant.ErrEmptyQuery):
		return apierrors.NewBadRequest(err.Error()).ErrStatus
	}

	var upstream *assistant.UpstreamError
	if errors.As(err, &upstream) {
		s := apierrors.NewInternalError(err).ErrStatus
		s.Code = http.StatusBadGateway
		s.Reason = metav1.StatusReason(http.StatusText(http.StatusBadGateway))
		s.Message = err.Error()
		return s
	}
	return apierrors.NewInternalError(err).ErrStatus
}

func writeError(w http.ResponseWriter, log logr.Logger, err error) {
	status := toStatus(err)
	status.TypeMeta = metav1.TypeMeta{Kind: "Status", APIVersion: "v1"}
	status.Status = metav1.StatusFailure
	if status.Code >= http.StatusInternalServerError {
		log.Error(err, "request failed", "code", status.Code)
	} else {
		log.V(1).Info("request rejected", "code", status.Code, "reason", status.Reason, "message", status.Message)
	}
	writeJSON(w, log, int(status.Code), status)
}

func writeJSON(w http.ResponseWriter, log logr.Logger, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// headers are out, nothing left to tell the client
		log.Error(err, "failed to write response")
	}
}
