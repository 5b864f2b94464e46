package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wellbeing-waitlist/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// APIPrefix patient resource root on the backend
	APIPrefix = "/api/v1/patients"

	DefaultTimeout = 15 * time.Second
)

// Credentials supplies the bearer token and is told when the backend
// rejects it (401).
type Credentials interface {
	Token() string
	Invalidate()
}

// errorBody backend error payload ({"error": ...} or {"message": ...})
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (b *errorBody) text() string {
	if b == nil {
		return ""
	}
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}

// messageBody success payload of PUT/DELETE
type messageBody struct {
	Message string `json:"message"`
}

// WaitlistClient REST client for the waitlist backend
type WaitlistClient struct {
	httpClient *resty.Client
	creds      Credentials
	logger     *zap.Logger
}

// NewWaitlistClient baseURL is the backend root (scheme://host:port).
// creds may be nil for anonymous use.
func NewWaitlistClient(baseURL string, timeout time.Duration, creds Credentials, logger *zap.Logger) *WaitlistClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &WaitlistClient{
		creds:  creds,
		logger: logger,
	}

	// no retries: failures are reported to the user as-is
	c.httpClient = resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/") + APIPrefix).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(c.beforeRequest)

	return c
}

func (c *WaitlistClient) beforeRequest(_ *resty.Client, req *resty.Request) error {
	req.SetHeader("X-Request-ID", uuid.NewString())
	if c.creds != nil {
		if token := c.creds.Token(); token != "" {
			req.SetAuthToken(token)
		}
	}
	return nil
}

// do executes req and converts every failure into an *APIError
func (c *WaitlistClient) do(req *resty.Request, method, path, op string) (*resty.Response, error) {
	var errBody errorBody
	req.SetError(&errBody)

	resp, err := req.Execute(method, path)
	if err != nil {
		kind := classifyTransport(err)
		c.logger.Error("Waitlist API call failed",
			zap.String("op", op),
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		return nil, &APIError{Kind: kind, Op: op, Err: err}
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		kind := classifyStatus(resp.StatusCode())
		c.logger.Warn("Waitlist API returned error",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("msg", errBody.text()),
		)
		if kind == KindUnauthorized && c.creds != nil {
			c.creds.Invalidate()
		}
		return nil, &APIError{
			Kind:    kind,
			Status:  resp.StatusCode(),
			Message: errBody.text(),
			Op:      op,
		}
	}

	return resp, nil
}

// FetchPatients GET /patients; cured nil fetches everyone.
// 204 No Content yields an empty list.
func (c *WaitlistClient) FetchPatients(ctx context.Context, cured *bool) ([]models.Patient, error) {
	var patients []models.Patient
	req := c.httpClient.R().SetContext(ctx).SetResult(&patients)
	if cured != nil {
		req.SetQueryParam("cured", strconv.FormatBool(*cured))
	}

	resp, err := c.do(req, resty.MethodGet, "/patients", "fetch_patients")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNoContent {
		return []models.Patient{}, nil
	}
	if patients == nil {
		patients = []models.Patient{}
	}

	c.logger.Debug("Fetched patients",
		zap.Int("count", len(patients)),
		zap.Bool("filtered", cured != nil),
	)
	return patients, nil
}

// GetPatient GET /{id}
func (c *WaitlistClient) GetPatient(ctx context.Context, id int64) (*models.Patient, error) {
	var patient models.Patient
	req := c.httpClient.R().SetContext(ctx).SetResult(&patient)
	if _, err := c.do(req, resty.MethodGet, fmt.Sprintf("/%d", id), "get_patient"); err != nil {
		return nil, err
	}
	return &patient, nil
}

// RegisterPatient POST /register, expects 201
func (c *WaitlistClient) RegisterPatient(ctx context.Context, reg models.Registration) (*models.Patient, error) {
	var created models.Patient
	req := c.httpClient.R().SetContext(ctx).SetBody(reg).SetResult(&created)

	resp, err := c.do(req, resty.MethodPost, "/register", "register_patient")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusCreated {
		return nil, &APIError{
			Kind:   KindUnknown,
			Status: resp.StatusCode(),
			Op:     "register_patient",
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode()),
		}
	}

	c.logger.Info("Registered patient",
		zap.Int64("patient_id", created.ID),
		zap.Int("emergency_level", created.EmergencyLevel),
	)
	return &created, nil
}

// AdminLogin POST /admin-login; any 200 grants access
func (c *WaitlistClient) AdminLogin(ctx context.Context, password string) error {
	req := c.httpClient.R().SetContext(ctx).SetBody(map[string]string{"password": password})
	resp, err := c.do(req, resty.MethodPost, "/admin-login", "admin_login")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return &APIError{
			Kind:   KindUnknown,
			Status: resp.StatusCode(),
			Op:     "admin_login",
			Err:    fmt.Errorf("unexpected status %d", resp.StatusCode()),
		}
	}
	return nil
}

// MarkCured PUT /{id}
func (c *WaitlistClient) MarkCured(ctx context.Context, id int64) error {
	var body messageBody
	req := c.httpClient.R().SetContext(ctx).SetResult(&body)
	if _, err := c.do(req, resty.MethodPut, fmt.Sprintf("/%d", id), "mark_cured"); err != nil {
		return err
	}
	c.logger.Debug("Marked patient cured", zap.Int64("patient_id", id), zap.String("msg", body.Message))
	return nil
}

// DeletePatient DELETE /{id}
func (c *WaitlistClient) DeletePatient(ctx context.Context, id int64) error {
	var body messageBody
	req := c.httpClient.R().SetContext(ctx).SetResult(&body)
	if _, err := c.do(req, resty.MethodDelete, fmt.Sprintf("/%d", id), "delete_patient"); err != nil {
		return err
	}
	c.logger.Info("Deleted patient", zap.Int64("patient_id", id))
	return nil
}

// Ping probes the backend with the patient list endpoint
func (c *WaitlistClient) Ping(ctx context.Context) error {
	req := c.httpClient.R().SetContext(ctx)
	_, err := c.do(req, resty.MethodGet, "/patients", "ping")
	return err
}
