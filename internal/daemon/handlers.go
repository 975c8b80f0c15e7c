package daemon

import (
	"encoding/json"
	"errors"
	"fmt"

	"inkwell/internal/jobstore"
	"inkwell/internal/model"
	"inkwell/internal/pipeline"
	"inkwell/internal/plan"
	"inkwell/internal/uds"
)

// SubmitParams is the payload of the submit command.
type SubmitParams struct {
	Topic        string         `json:"topic"`
	ContentTypes []string       `json:"content_types"`
	Priority     string         `json:"priority,omitempty"`
	Context      map[string]any `json:"context,omitempty"`
}

// JobParams identifies one job for status and cancel.
type JobParams struct {
	JobID string `json:"job_id"`
}

func (d *Daemon) registerHandlers() {
	d.server.Handle("ping", d.handlePing)
	d.server.Handle("submit", d.handleSubmit)
	d.server.Handle("status", d.handleStatus)
	d.server.Handle("jobs", d.handleJobs)
	d.server.Handle("cancel", d.handleCancel)
	d.server.Handle("workflows", d.handleWorkflows)
	d.server.Handle("shutdown", d.handleShutdown)
}

func (d *Daemon) handlePing(req *uds.Request) *uds.Response {
	cfg := d.snapshotConfig()
	evaluations, passes, failures, _ := d.exec.GateMetrics().Stats()
	return uds.SuccessResponse(map[string]any{
		"status":       "ok",
		"strict_gates": cfg.Pipeline.StrictGates,
		"jobs":         len(d.store.List()),
		"gate_stats": map[string]int64{
			"evaluations": evaluations,
			"passes":      passes,
			"failures":    failures,
		},
	})
}

func (d *Daemon) handleSubmit(req *uds.Request) *uds.Response {
	var params SubmitParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return uds.ErrorResponse(uds.ErrCodeValidation, fmt.Sprintf("parse params: %v", err))
	}

	kinds := make([]model.ContentType, 0, len(params.ContentTypes))
	for _, raw := range params.ContentTypes {
		kind, err := model.ParseContentType(raw)
		if err != nil {
			return uds.ErrorResponse(uds.ErrCodeValidation, err.Error())
		}
		kinds = append(kinds, kind)
	}

	request := model.Request{
		Topic:        params.Topic,
		ContentTypes: kinds,
		Priority:     params.Priority,
		Context:      params.Context,
	}
	if request.Priority == "" {
		request.Priority = model.PriorityNormal
	}

	id, err := d.store.Submit(request)
	if err != nil {
		return uds.ErrorResponse(uds.ErrCodeValidation, err.Error())
	}

	shape := plan.Classify(request)
	return uds.SuccessResponse(map[string]string{
		"job_id":   id,
		"workflow": string(shape),
	})
}

func (d *Daemon) handleStatus(req *uds.Request) *uds.Response {
	var params JobParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return uds.ErrorResponse(uds.ErrCodeValidation, fmt.Sprintf("parse params: %v", err))
	}

	job, err := d.store.Get(params.JobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			return uds.ErrorResponse(uds.ErrCodeNotFound, err.Error())
		}
		return uds.ErrorResponse(uds.ErrCodeInternal, err.Error())
	}
	return uds.SuccessResponse(job)
}

func (d *Daemon) handleJobs(req *uds.Request) *uds.Response {
	jobs := d.store.List()
	// Trim results from the listing; status returns the full record.
	summaries := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, map[string]any{
			"id":         job.ID,
			"topic":      job.Request.Topic,
			"status":     string(job.Status),
			"last_step":  job.LastStep,
			"steps_done": job.StepsDone,
			"created_at": job.CreatedAt,
		})
	}
	return uds.SuccessResponse(map[string]any{"jobs": summaries})
}

func (d *Daemon) handleCancel(req *uds.Request) *uds.Response {
	var params JobParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return uds.ErrorResponse(uds.ErrCodeValidation, fmt.Sprintf("parse params: %v", err))
	}

	if err := d.store.Cancel(params.JobID); err != nil {
		switch {
		case errors.Is(err, jobstore.ErrNotFound):
			return uds.ErrorResponse(uds.ErrCodeNotFound, err.Error())
		case errors.Is(err, jobstore.ErrAlreadyTerminal):
			return uds.ErrorResponse(uds.ErrCodeCancelled, err.Error())
		default:
			return uds.ErrorResponse(uds.ErrCodeInternal, err.Error())
		}
	}
	return uds.SuccessResponse(map[string]string{"job_id": params.JobID, "status": "cancel_requested"})
}

func (d *Daemon) handleWorkflows(req *uds.Request) *uds.Response {
	sequences := plan.Sequences()
	workflows := make(map[string][]string, len(sequences))
	for shape, steps := range sequences {
		names := make([]string, len(steps))
		for i, step := range steps {
			names[i] = string(step)
		}
		workflows[string(shape)] = names
	}
	return uds.SuccessResponse(map[string]any{"workflows": workflows})
}

func (d *Daemon) handleShutdown(req *uds.Request) *uds.Response {
	d.log(pipeline.LogLevelInfo, "shutdown requested via UDS")
	go d.Shutdown()
	return uds.SuccessResponse(map[string]string{"status": "shutdown_accepted"})
}
