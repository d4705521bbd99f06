package app

import (
	"uvbump/internal/adapters"
	"uvbump/internal/ports"
	"uvbump/internal/types"
)

// Service runs reports. Ports left nil are chosen per request from the
// project kind and index backend.
type Service struct {
	Manifest    ports.ManifestPort
	Environment ports.EnvironmentPort
	Index       ports.IndexPort
	Commands    ports.CommandPort
}

func NewService() Service {
	return Service{}
}

type reportPorts struct {
	manifest    ports.ManifestPort
	environment ports.EnvironmentPort
	index       ports.IndexPort
	writer      ports.ReportWriterPort
}

// portsFor expects a request that already passed normalizeRequest.
func (s Service) portsFor(req ReportRequest) (reportPorts, error) {
	commands := s.Commands
	if commands == nil {
		commands = adapters.NewExecCommandAdapter(req.Timeout)
	}
	httpCfg := adapters.HTTPConfig{
		Timeout: req.Timeout,
		User:    req.IndexUser,
		Token:   req.IndexToken,
	}

	resolved := reportPorts{
		manifest:    s.Manifest,
		environment: s.Environment,
		index:       s.Index,
	}
	if resolved.manifest == nil {
		switch req.Kind {
		case types.ProjectKindNpm:
			resolved.manifest = adapters.NewPackageJSONFileAdapter()
		default:
			resolved.manifest = adapters.NewPyprojectFileAdapter()
		}
	}
	if resolved.environment == nil {
		switch req.Kind {
		case types.ProjectKindNpm:
			resolved.environment = adapters.NewNpmLsAdapter(commands)
		default:
			resolved.environment = adapters.NewUvExportAdapter(commands)
		}
	}
	if resolved.index == nil {
		switch req.IndexBackend {
		case types.IndexBackendPipSimple:
			resolved.index = adapters.NewPipSimpleIndexAdapter(req.Index, req.Pre, httpCfg)
		case types.IndexBackendPipCommand:
			resolved.index = adapters.NewPipCommandIndexAdapter(commands, req.Root, req.Index, req.Pre)
		case types.IndexBackendNpmRegistry:
			resolved.index = adapters.NewNpmRegistryIndexAdapter(req.Index, req.Pre, httpCfg)
		case types.IndexBackendNpmCommand:
			resolved.index = adapters.NewNpmCommandIndexAdapter(commands, req.Root, req.Index, req.Pre)
		default:
			resolved.index = adapters.NewPypiJSONIndexAdapter(req.Index, req.Pre, httpCfg)
		}
	}
	writer, err := adapters.NewReportWriter(req.Format)
	if err != nil {
		return reportPorts{}, err
	}
	resolved.writer = writer
	return resolved, nil
}
