package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"meridian/internal/rotation"
)

// HTTPRenderer drives the external render service: it submits a selection,
// then polls the returned task until it yields an artifact or an error,
// relaying progress along the way.
type HTTPRenderer struct {
	BaseURL string
	Client  *http.Client

	// PollInterval defaults to 2s.
	PollInterval time.Duration
}

func (r *HTTPRenderer) client() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return http.DefaultClient
}

type renderTask struct {
	TaskID   string `json:"task_id"`
	Status   string `json:"status"` // running, completed, failed
	Progress int    `json:"progress"`
	Message  string `json:"message"`
	Artifact string `json:"artifact"`
	Error    string `json:"error"`
}

func (r *HTTPRenderer) Execute(ctx context.Context, sel rotation.Selection, report ProgressFunc) (string, error) {
	body, err := json.Marshal(sel)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client().Do(req)
	if err != nil {
		return "", fmt.Errorf("submit render: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("render service returned %s", resp.Status)
	}
	var task renderTask
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return "", fmt.Errorf("decode render task: %w", err)
	}

	interval := r.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}

		cur, err := r.poll(ctx, task.TaskID)
		if err != nil {
			return "", err
		}
		report(cur.Progress, cur.Message)

		switch cur.Status {
		case "completed":
			if cur.Artifact == "" {
				return "", errors.New("render completed without artifact")
			}
			return cur.Artifact, nil
		case "failed":
			if cur.Error == "" {
				cur.Error = "render failed"
			}
			return "", errors.New(cur.Error)
		}
	}
}

func (r *HTTPRenderer) poll(ctx context.Context, taskID string) (renderTask, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BaseURL+"/render/"+taskID, nil)
	if err != nil {
		return renderTask{}, err
	}
	resp, err := r.client().Do(req)
	if err != nil {
		return renderTask{}, fmt.Errorf("poll render task: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return renderTask{}, fmt.Errorf("render service returned %s", resp.Status)
	}
	var task renderTask
	if err := json.NewDecoder(resp.Body).Decode(&task); err != nil {
		return renderTask{}, fmt.Errorf("decode render task: %w", err)
	}
	return task, nil
}

// HTTPPublisher uploads artifacts through the external publish service,
// authenticating with an externally issued JWT credential kept on disk.
type HTTPPublisher struct {
	BaseURL   string
	TokenPath string
	Client    *http.Client
}

func (p *HTTPPublisher) client() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return http.DefaultClient
}

func (p *HTTPPublisher) token() (string, error) {
	b, err := os.ReadFile(p.TokenPath)
	if err != nil {
		return "", fmt.Errorf("read publish credential: %w", err)
	}
	return string(bytes.TrimSpace(b)), nil
}

func (p *HTTPPublisher) Publish(ctx context.Context, artifact string, meta Metadata) (RemoteRecord, error) {
	tok, err := p.token()
	if err != nil {
		return RemoteRecord{}, err
	}

	body, err := json.Marshal(map[string]any{
		"artifact": artifact,
		"metadata": meta,
	})
	if err != nil {
		return RemoteRecord{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/publish", bytes.NewReader(body))
	if err != nil {
		return RemoteRecord{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := p.client().Do(req)
	if err != nil {
		return RemoteRecord{}, fmt.Errorf("publish: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return RemoteRecord{}, fmt.Errorf("publish service returned %s", resp.Status)
	}
	var rec RemoteRecord
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return RemoteRecord{}, fmt.Errorf("decode publish record: %w", err)
	}
	return rec, nil
}

// CredentialStatus checks the on-disk credential without calling the remote:
// the token must parse as a JWT and not be expired.
func (p *HTTPPublisher) CredentialStatus(ctx context.Context) error {
	tok, err := p.token()
	if err != nil {
		return err
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("malformed publish credential: %w", err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("publish credential has no expiry: %w", err)
	}
	if exp != nil && exp.Before(time.Now()) {
		return fmt.Errorf("publish credential expired at %s", exp.Format(time.RFC3339))
	}
	return nil
}
