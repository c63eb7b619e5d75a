package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/text/unicode/norm"

	"github.com/mind-engage/examinfo/internal/catalog"
	"github.com/mind-engage/examinfo/internal/score"
)

// Client reads university / subject-score data from the upstream REST API.
type Client struct {
	baseURL    string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.http.Timeout = d } }

// WithRetries sets how many times a 5xx or transport failure is retried.
func WithRetries(n int) Option { return func(c *Client) { c.maxRetries = n } }

func WithBackoff(d time.Duration) Option { return func(c *Client) { c.backoff = d } }

// WithClientCredentials authenticates every request with an OAuth2
// client-credentials token.
func WithClientCredentials(tokenURL, clientID, clientSecret string) Option {
	return func(c *Client) {
		cc := clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		timeout := c.http.Timeout
		c.http = cc.Client(context.Background())
		c.http.Timeout = timeout
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		http:       &http.Client{Timeout: 15 * time.Second},
		maxRetries: 2,
		backoff:    250 * time.Millisecond,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Page is one page of the admissions listing. NextPage is 0 on the last page.
type Page struct {
	Items    []catalog.Admission
	NextPage int
}

// StatusError is a non-2xx upstream response.
type StatusError struct {
	Op     string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: %d %s", e.Op, e.Status, strings.TrimSpace(e.Body))
}

func (c *Client) ListAdmissions(ctx context.Context, page int) (Page, error) {
	u := c.baseURL + "/admissions?" + url.Values{"page": {strconv.Itoa(page)}}.Encode()
	var body struct {
		Items    []admissionPayload `json:"items"`
		NextPage int                `json:"nextPage"`
	}
	if err := c.getJSON(ctx, "list admissions", u, &body); err != nil {
		return Page{}, err
	}
	out := Page{NextPage: body.NextPage, Items: make([]catalog.Admission, 0, len(body.Items))}
	for _, p := range body.Items {
		out.Items = append(out.Items, p.toAdmission())
	}
	return out, nil
}

func (c *Client) GetAdmission(ctx context.Context, id string) (catalog.Admission, error) {
	var p admissionPayload
	if err := c.getJSON(ctx, "get admission", c.baseURL+"/admissions/"+url.PathEscape(id), &p); err != nil {
		return catalog.Admission{}, err
	}
	if p.ID == "" {
		p.ID = id
	}
	return p.toAdmission(), nil
}

func (c *Client) getJSON(ctx context.Context, op, u string, dst any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.backoff * time.Duration(attempt)):
			}
		}
		retry, err := c.do(ctx, op, u, dst)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
	}
	return fmt.Errorf("%s: giving up after %d attempts: %w", op, c.maxRetries+1, lastErr)
}

func (c *Client) do(ctx context.Context, op, u string, dst any) (retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Accept", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return ctx.Err() == nil, err
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return res.StatusCode >= 500, &StatusError{Op: op, Status: res.StatusCode, Body: string(b)}
	}
	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return false, fmt.Errorf("%s: decode: %w", op, err)
	}
	return false, nil
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

type admissionPayload struct {
	ID             string                        `json:"id"`
	UniversityID   string                        `json:"universityId"`
	UniversityName string                        `json:"universityName"`
	Prefecture     string                        `json:"prefecture"`
	UniversityType string                        `json:"universityType"`
	DepartmentID   string                        `json:"departmentId"`
	DepartmentName string                        `json:"departmentName"`
	MajorID        string                        `json:"majorId"`
	MajorName      string                        `json:"majorName"`
	ScheduleID     string                        `json:"scheduleId"`
	ScheduleName   string                        `json:"scheduleName"`
	Subjects       map[string]score.SubjectScore `json:"subjects"`
}

func (p admissionPayload) toAdmission() catalog.Admission {
	return catalog.Admission{
		ID:             p.ID,
		UniversityID:   p.UniversityID,
		UniversityName: p.UniversityName,
		Prefecture:     p.Prefecture,
		UniversityType: p.UniversityType,
		DepartmentID:   p.DepartmentID,
		DepartmentName: p.DepartmentName,
		MajorID:        p.MajorID,
		MajorName:      p.MajorName,
		ScheduleID:     p.ScheduleID,
		ScheduleName:   p.ScheduleName,
		Subjects:       NormalizeSubjects(p.Subjects),
	}
}

// NormalizeSubjects NFKC-folds subject keys so that full-width "英語Ｒ" and
// "英語R" are the same subject. Keys that collapse together are summed.
func NormalizeSubjects(in map[string]score.SubjectScore) score.SubjectScoreRecord {
	out := make(score.SubjectScoreRecord, len(in))
	for name, s := range in {
		k := strings.TrimSpace(norm.NFKC.String(name))
		prev := out[k]
		out[k] = score.SubjectScore{
			CommonTest: prev.CommonTest + s.CommonTest,
			SecondTest: prev.SecondTest + s.SecondTest,
		}
	}
	return out
}
