package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/sttts/kmanage/internal/assistant"
	"github.com/sttts/kmanage/internal/backend"
	"github.com/sttts/kmanage/internal/backend/kube"
	"github.com/sttts/kmanage/pkg/workload"
)

func notFound(req *http.Request) error {
	return apierrors.NewNotFound(schema.GroupResource{Resource: "routes"}, req.URL.Path)
}

func methodNotAllowed(req *http.Request) error {
	return apierrors.NewMethodNotSupported(schema.GroupResource{Resource: req.URL.Path}, req.Method)
}

// resourceTarget reads and validates the kind, namespace and name of a
// request path.
func resourceTarget(req *http.Request) (target, error) {
	vars := mux.Vars(req)
	t := target{Kind: vars["kind"], Namespace: vars["namespace"], Name: vars["name"]}
	if t.Kind == "" {
		// only pods have logs
		t.Kind = string(workload.Pod)
	}
	return t, validateStruct(&t)
}

func readBody(w http.ResponseWriter, req *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apierrors.NewRequestEntityTooLargeError(fmt.Sprintf("limit is %d bytes", tooLarge.Limit))
		}
		return nil, apierrors.NewBadRequest(fmt.Sprintf("failed to read body: %v", err))
	}
	return data, nil
}

type mutationResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
}

func (s *Server) listNamespaces(w http.ResponseWriter, req *http.Request) {
	namespaces, err := s.backend.Namespaces(req.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if namespaces == nil {
		namespaces = []string{}
	}
	writeJSON(w, s.log, http.StatusOK, map[string][]string{"namespaces": namespaces})
}

func (s *Server) list(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	kind, err := workload.ParseKind(vars["plural"])
	if err != nil {
		writeError(w, s.log, apierrors.NewBadRequest(err.Error()))
		return
	}
	namespace := vars["namespace"]
	if err := requestValidator.Var(namespace, "required,dns1123_label"); err != nil {
		writeError(w, s.log, apierrors.NewBadRequest(fmt.Sprintf("invalid namespace %q", namespace)))
		return
	}

	items, err := s.backend.List(req.Context(), kind, namespace)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if items == nil {
		items = []workload.Summary{}
	}
	writeJSON(w, s.log, http.StatusOK, map[string][]workload.Summary{kind.Plural(): items})
}

// mutation reads, validates and submits a manifest body.
func (s *Server) mutation(w http.ResponseWriter, req *http.Request, submit func(ctx context.Context, t target, doc []byte) error, code int) {
	t, err := resourceTarget(req)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	doc, err := readBody(w, req)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := validateManifest(t, doc); err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := submit(req.Context(), t, doc); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, code, mutationResponse{Status: "success", Name: t.Name})
}

func (s *Server) create(w http.ResponseWriter, req *http.Request) {
	s.mutation(w, req, func(ctx context.Context, t target, doc []byte) error {
		return s.backend.Create(ctx, workload.Kind(t.Kind), t.Namespace, t.Name, doc)
	}, http.StatusCreated)
}

func (s *Server) update(w http.ResponseWriter, req *http.Request) {
	s.mutation(w, req, func(ctx context.Context, t target, doc []byte) error {
		ctx, cancel := context.WithTimeout(ctx, s.updateTimeout)
		defer cancel()
		err := s.backend.Update(ctx, workload.Kind(t.Kind), t.Namespace, t.Name, doc)
		result := "success"
		if err != nil {
			result = "failure"
		}
		recreateTotal.WithLabelValues(t.Kind, result).Inc()
		return err
	}, http.StatusOK)
}

func (s *Server) delete(w http.ResponseWriter, req *http.Request) {
	t, err := resourceTarget(req)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.backend.Delete(req.Context(), workload.Kind(t.Kind), t.Namespace, t.Name); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, mutationResponse{Status: "success", Name: t.Name})
}

func (s *Server) logs(w http.ResponseWriter, req *http.Request) {
	t, err := resourceTarget(req)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	text, err := s.backend.Logs(req.Context(), t.Namespace, t.Name)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, map[string]string{"logs": text})
}

func (s *Server) manifest(w http.ResponseWriter, req *http.Request) {
	t, err := resourceTarget(req)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	data, err := s.backend.Manifest(req.Context(), workload.Kind(t.Kind), t.Namespace, t.Name)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	w.Header().Set("Content-Type", backend.ContentTypeYAML)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error(err, "failed to write manifest")
	}
}

// draft relays the completion response unchanged, the client picks the
// content out of it.
func (s *Server) draft(w http.ResponseWriter, req *http.Request) {
	if s.completer == nil {
		writeError(w, s.log, apierrors.NewServiceUnavailable("no assistant configured"))
		return
	}
	body, err := readBody(w, req)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	var r draftRequest
	if err := json.Unmarshal(body, &r); err != nil {
		writeError(w, s.log, apierrors.NewBadRequest(fmt.Sprintf("invalid request body: %v", err)))
		return
	}
	if err := validateStruct(&r); err != nil {
		writeError(w, s.log, err)
		return
	}

	data, err := s.completer.Complete(req.Context(), assistant.Request{YAMLType: r.YAMLType, Query: r.Query})
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.log.Error(err, "failed to write completion")
	}
}

func (s *Server) clusterName(w http.ResponseWriter, req *http.Request) {
	if s.info == nil {
		writeError(w, s.log, apierrors.NewServiceUnavailable("no cluster information available"))
		return
	}
	name, err := s.info.ClusterName(req.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, s.log, http.StatusOK, map[string]string{"clusterName": name})
}

func (s *Server) nodeDetails(w http.ResponseWriter, req *http.Request) {
	if s.info == nil {
		writeError(w, s.log, apierrors.NewServiceUnavailable("no cluster information available"))
		return
	}
	nodes, err := s.info.Nodes(req.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if nodes == nil {
		nodes = []kube.NodeInfo{}
	}
	writeJSON(w, s.log, http.StatusOK, map[string][]kube.NodeInfo{"nodes": nodes})
}
