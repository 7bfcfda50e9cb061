package bureau

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Config holds the FactorsNetwork connection settings. Built by config.Load and passed in;
// the client never reads the environment itself.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	VerifySSL bool
	Timeout   time.Duration
}

// DebtorQuery filters a debtor search. Zero values are omitted from the request.
type DebtorQuery struct {
	MCNumber  int64
	DOTNumber int64
	Name      string
}

// Debtor is one candidate from a debtor search.
type Debtor struct {
	ExternalID  string          `json:"uuid"`
	CompanyName string          `json:"companyName"`
	MCNumber    RegistryNumber  `json:"mcNumber"`
	DOTNumber   RegistryNumber  `json:"dotNumber"`
	Raw         json.RawMessage `json:"-"`
}

// CreditStatus is the decoded credit-status document for one debtor.
type CreditStatus struct {
	ExternalID string
	Payload    map[string]any
	Raw        json.RawMessage
}

type debtorsResponse struct {
	Debtors      []json.RawMessage `json:"debtors"`
	TotalRecords int               `json:"totalRecords"`
}

// Client talks to the FactorsNetwork debtor API over HTTP(S).
type Client struct {
	cfg  Config
	http *http.Client
}

// New builds a client from cfg. TLS verification stays on unless cfg.VerifySSL is false.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.VerifySSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via FACTORS_NETWORK_VERIFY_SSL=false
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout, Transport: transport},
	}
}

// NewWithHTTPClient is New with a caller-supplied transport (tests, shared pools).
func NewWithHTTPClient(cfg Config, hc *http.Client) *Client {
	c := New(cfg)
	if hc != nil {
		c.http = hc
	}
	return c
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.BaseURL) != ""
}

// SearchDebtors runs a best-effort identity search. No match is an empty slice, not an error.
func (c *Client) SearchDebtors(ctx context.Context, q DebtorQuery) ([]Debtor, error) {
	params := url.Values{}
	if q.MCNumber != 0 {
		params.Set("mcNumber", strconv.FormatInt(q.MCNumber, 10))
	}
	if q.DOTNumber != 0 {
		params.Set("dotNumber", strconv.FormatInt(q.DOTNumber, 10))
	}
	if name := strings.TrimSpace(q.Name); name != "" {
		params.Set("name", name)
	}

	body, err := c.get(ctx, "search_debtors", "/api/debtors.json", params)
	if err != nil {
		var be *Error
		if errors.As(err, &be) && be.Category == ErrorNotFound {
			return []Debtor{}, nil
		}
		return nil, err
	}

	var resp debtorsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// Non-object payloads carry no debtors.
		if bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
			return nil, &Error{Category: ErrorBadData, Op: "search_debtors", Underlying: err}
		}
		return []Debtor{}, nil
	}
	debtors := make([]Debtor, 0, len(resp.Debtors))
	for _, raw := range resp.Debtors {
		var d Debtor
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		d.Raw = raw
		debtors = append(debtors, d)
	}
	return debtors, nil
}

// GetCreditStatus fetches the current credit-status document for a debtor.
func (c *Client) GetCreditStatus(ctx context.Context, externalID string) (*CreditStatus, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, &Error{Category: ErrorBadData, Op: "credit_status", Underlying: errors.New("empty debtor id")}
	}
	path := fmt.Sprintf("/api/debtors/%s/credit-status.json", url.PathEscape(externalID))
	body, err := c.get(ctx, "credit_status", path, nil)
	if err != nil {
		return nil, err
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Category: ErrorBadData, Op: "credit_status", Underlying: err}
	}
	id := externalID
	if s, ok := payload["uuid"].(string); ok && s != "" {
		id = s
	}
	return &CreditStatus{ExternalID: id, Payload: payload, Raw: json.RawMessage(body)}, nil
}

// Ping checks that the bureau host answers at all; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, strings.TrimRight(c.cfg.BaseURL, "/"), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport("ping", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values) ([]byte, error) {
	if !c.Configured() {
		return nil, &Error{Category: ErrorInternal, Op: op, Underlying: ErrNotConfigured}
	}
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Category: ErrorInternal, Op: op, Underlying: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Username != "" && c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Category:   categoryForStatus(resp.StatusCode),
			Op:         op,
			StatusCode: resp.StatusCode,
			Underlying: fmt.Errorf("body: %s", truncate(string(body), 300)),
		}
	}
	return body, nil
}

func classifyTransport(op string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &Error{Category: ErrorTimeout, Op: op, Underlying: err}
	}
	return &Error{Category: ErrorOutage, Op: op, Underlying: err}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...<truncated>"
}

// RegistryNumber is an MC or DOT number the bureau may send as a JSON number or a numeric string.
type RegistryNumber struct {
	Value int64
	Valid bool
}

func (f *RegistryNumber) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*f = RegistryNumber{}
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		*f = RegistryNumber{}
		return nil
	}
	*f = RegistryNumber{Value: n, Valid: true}
	return nil
}

// Ptr returns the number or nil when absent.
func (f RegistryNumber) Ptr() *int64 {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// Number builds a present RegistryNumber.
func Number(n int64) RegistryNumber {
	return RegistryNumber{Value: n, Valid: true}
}
