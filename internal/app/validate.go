package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"uvbump/internal/types"
)

// kindBackends lists the index backends each project kind accepts; the
// first entry is the default.
var kindBackends = map[types.ProjectKind][]types.IndexBackend{
	types.ProjectKindUv: {
		types.IndexBackendPypiJSON,
		types.IndexBackendPipSimple,
		types.IndexBackendPipCommand,
	},
	types.ProjectKindNpm: {
		types.IndexBackendNpmRegistry,
		types.IndexBackendNpmCommand,
	},
}

// normalizeRequest fills defaults and rejects unusable combinations. All
// failures are configuration errors.
func normalizeRequest(req ReportRequest) (ReportRequest, error) {
	root := strings.TrimSpace(req.Root)
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("invalid project root: %s", root)).
			WithCause(err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("project root not found: %s", abs)).
			WithCause(err)
	}
	if !info.IsDir() {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("project root is not a directory: %s", abs))
	}
	req.Root = abs

	if req.Kind == "" {
		req.Kind = types.ProjectKindUv
	}
	backends, ok := kindBackends[req.Kind]
	if !ok {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported project kind: %s", req.Kind))
	}
	if req.IndexBackend == "" {
		req.IndexBackend = backends[0]
	}
	if !containsBackend(backends, req.IndexBackend) {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("index backend %s cannot serve %s projects", req.IndexBackend, req.Kind))
	}

	if req.InexactPins == "" {
		req.InexactPins = types.InexactPinPolicyExclude
	}
	switch req.InexactPins {
	case types.InexactPinPolicyExclude, types.InexactPinPolicyBound:
	default:
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported inexact pin policy: %s", req.InexactPins))
	}

	if req.Format == "" {
		req.Format = types.OutputFormatText
	}
	if req.Timeout < 0 {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("timeout must not be negative")
	}
	if req.Timeout == 0 {
		req.Timeout = DefaultTimeout
	}
	if req.Workers < 0 {
		return ReportRequest{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("workers must not be negative")
	}
	if req.Workers == 0 {
		req.Workers = DefaultWorkers
	}
	req.Index = strings.TrimSpace(req.Index)
	return req, nil
}

func containsBackend(values []types.IndexBackend, target types.IndexBackend) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
