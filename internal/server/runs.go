package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/v0xg/streamchapters/internal/chapter"
	"github.com/v0xg/streamchapters/internal/events"
)

const maxBody = 1 << 20

// startRequest accepts either a structured jobs array or the raw jobData
// text as typed into a form, and either explicit settings or a preset name.
type startRequest struct {
	Jobs     json.RawMessage   `json:"jobs,omitempty"`
	JobData  string            `json:"jobData,omitempty"`
	Settings *chapter.Settings `json:"settings,omitempty"`
	Preset   string            `json:"preset,omitempty"`
	Target   string            `json:"target,omitempty"`
}

type startResponse struct {
	RunID string `json:"runId"`
	Total int    `json:"total"`
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.reject(w, chapter.Wrap(chapter.KindInvalidInput, err, "read request"))
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		s.reject(w, chapter.Wrap(chapter.KindInvalidInput, err, "invalid request body"))
		return
	}

	jobData := req.JobData
	if len(req.Jobs) > 0 {
		jobData = string(req.Jobs)
	}
	jobs, err := chapter.ParseJobs([]byte(jobData))
	if err != nil {
		s.reject(w, err)
		return
	}

	settings, err := resolveSettings(req.Settings, req.Preset)
	if err != nil {
		s.reject(w, err)
		return
	}

	target, err := s.deps.Targets.Resolve(ctx, req.Target)
	if err != nil {
		s.reject(w, err)
		return
	}

	if err := s.deps.Runner.Start(s.deps.RunContext, jobs, settings, target); err != nil {
		s.reject(w, err)
		return
	}

	// a refused start must not replace the input of the run in progress
	if err := s.deps.Runs.SaveInput(ctx, jobData, settings); err != nil {
		s.logger.Warn("Failed to remember run input", "error", err)
	}

	state := s.deps.Runner.State()
	s.logger.Info("Run accepted", "run_id", state.RunID, "jobs", len(jobs))
	writeJSON(w, http.StatusAccepted, startResponse{RunID: state.RunID, Total: len(jobs)})
}

func resolveSettings(explicit *chapter.Settings, preset string) (chapter.Settings, error) {
	if explicit != nil {
		if err := explicit.Validate(); err != nil {
			return chapter.Settings{}, err
		}
		return *explicit, nil
	}
	if strings.TrimSpace(preset) == "" {
		preset = chapter.DefaultPreset
	}
	return chapter.Preset(preset)
}

// reject answers a refused start and tells observers why
func (s *Server) reject(w http.ResponseWriter, err error) {
	status := statusFor(err)
	s.logger.Info("Run rejected", "status", status, "kind", chapter.KindOf(err), "error", err)
	s.deps.Bus.Publish(events.NewError("", err.Error()))
	writeError(w, status, err)
}

func (s *Server) stopRun(w http.ResponseWriter, r *http.Request) {
	s.deps.Runner.Stop()
	writeJSON(w, http.StatusAccepted, s.deps.Runner.State())
}
