package lsp

import (
	"context"
	"maps"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/witls/pkg/diagnostic"
	"github.com/walteh/witls/pkg/lsp/protocol"
)

// lint runs one lint cycle for uri: the file's diagnostics are cleared right
// away and the validator output for its package is published when it arrives.
// A run is dropped if a newer one for the same package started meanwhile.
func (s *Server) lint(ctx context.Context, uri protocol.DocumentURI) {
	path := uri.Path()
	if path == "" {
		zerolog.Ctx(ctx).Debug().Str("uri", string(uri)).Msg("not a file, skipping diagnostics")
		return
	}
	dir := filepath.Dir(path)

	gen := s.nextGeneration(dir)

	logger := zerolog.Ctx(ctx).With().
		Str("lint_id", uuid.NewString()).
		Str("uri", string(uri)).
		Uint64("generation", gen).
		Logger()

	if err := s.publish(ctx, uri, nil); err != nil {
		logger.Warn().Err(err).Msg("clearing diagnostics")
	}

	s.lints.Add(1)
	go func() {
		defer s.lints.Done()

		ctx := logger.WithContext(context.WithoutCancel(ctx))

		report, err := s.extractor.ExtractDir(ctx, dir)
		if err != nil {
			logger.Error().Err(err).Str("dir", dir).Msg("validator run failed")
			return
		}

		targets, ok := s.settle(dir, gen, report)
		if !ok {
			logger.Debug().Msg("discarding diagnostics from a superseded run")
			return
		}

		logger.Debug().Int("diagnostics", report.Count()).Int("files", len(report)).Msg("validator finished")

		for _, target := range targets {
			if err := s.publish(ctx, target, report[string(target)]); err != nil {
				logger.Warn().Err(err).Str("target", string(target)).Msg("publishing diagnostics")
			}
		}
	}()
}

func (s *Server) nextGeneration(dir string) uint64 {
	s.lintMu.Lock()
	defer s.lintMu.Unlock()
	s.generations[dir]++
	return s.generations[dir]
}

// settle records which files of dir now carry diagnostics and returns every
// file that needs publishing: those in report, plus those that had
// diagnostics before and no longer do. It reports false if gen went stale.
func (s *Server) settle(dir string, gen uint64, report diagnostic.Report) ([]protocol.DocumentURI, bool) {
	s.lintMu.Lock()
	defer s.lintMu.Unlock()

	if s.generations[dir] != gen {
		return nil, false
	}

	now := make(map[protocol.DocumentURI]bool, len(report))
	targets := make([]protocol.DocumentURI, 0, len(report))
	for _, uri := range report.URIs() {
		now[protocol.DocumentURI(uri)] = true
		targets = append(targets, protocol.DocumentURI(uri))
	}
	for _, uri := range slices.Sorted(maps.Keys(s.published[dir])) {
		if !now[uri] {
			targets = append(targets, uri)
		}
	}
	s.published[dir] = now

	return targets, true
}

func (s *Server) publish(ctx context.Context, uri protocol.DocumentURI, diags []diagnostic.Diagnostic) error {
	if s.callbackClient == nil {
		zerolog.Ctx(ctx).Debug().Str("uri", string(uri)).Msg("no client connected, dropping diagnostics")
		return nil
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(diags),
	}
	if doc, ok := s.documents.GetNoFallback(uri); ok {
		version := doc.Version
		params.Version = &version
	}

	return s.callbackClient.PublishDiagnostics(ctx, params)
}

func toProtocolDiagnostics(diags []diagnostic.Diagnostic) []protocol.Diagnostic {
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(d.Range),
			Severity: toProtocolSeverity(d.Severity),
			Source:   d.Source,
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolSeverity(sev diagnostic.DiagnosticSeverity) protocol.DiagnosticSeverity {
	switch sev {
	case diagnostic.SeverityWarning:
		return protocol.SeverityWarning
	case diagnostic.SeverityInformation:
		return protocol.SeverityInformation
	case diagnostic.SeverityHint:
		return protocol.SeverityHint
	default:
		return protocol.SeverityError
	}
}
