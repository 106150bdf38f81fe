package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := c.do(ctx, call{
		method: http.MethodPost, path: "/users/login", public: true,
		body: &LoginRequest{Email: email, Password: password},
	}, &out); err != nil {
		return nil, err
	}
	c.setTokens(out.Tokens)
	return &out, nil
}

func (c *Client) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	var out AuthResponse
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/users/register", public: true, body: req}, &out); err != nil {
		return nil, err
	}
	c.setTokens(out.Tokens)
	return &out, nil
}

// Refresh renews the access token now.
func (c *Client) Refresh(ctx context.Context) (*TokenPair, error) {
	if err := c.refresh(ctx, c.accessToken()); err != nil {
		return nil, err
	}
	return c.Tokens(), nil
}

// Logout revokes the session server side and forgets the tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, call{method: http.MethodPost, path: "/users/logout"}, nil)
	c.setTokens(nil)
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/users/me"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListResidents(ctx context.Context, q ResidentQuery) ([]*Resident, *ListMeta, error) {
	query := map[string]string{}
	set(query, "status", q.Status)
	set(query, "search", q.Search)
	set(query, "group_id", q.GroupID)
	setInt(query, "page", q.Page)
	setInt(query, "page_size", q.PageSize)

	var out []*Resident
	meta, err := c.do(ctx, call{method: http.MethodGet, path: "/residents", query: query}, &out)
	return out, meta, err
}

func (c *Client) GetResident(ctx context.Context, id uuid.UUID) (*Resident, error) {
	var out Resident
	if _, err := c.do(ctx, call{method: http.MethodGet, path: "/residents/" + id.String()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateResident(ctx context.Context, req *CreateResidentRequest) (*Resident, error) {
	var out Resident
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/residents", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateResident(ctx context.Context, id uuid.UUID, req *UpdateResidentRequest) (*Resident, error) {
	var out Resident
	if _, err := c.do(ctx, call{method: http.MethodPut, path: "/residents/" + id.String(), body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteResident(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: "/residents/" + id.String()}, nil)
	return err
}

func (c *Client) ListMedications(ctx context.Context, residentID uuid.UUID, status string) ([]*Medication, error) {
	query := map[string]string{}
	set(query, "status", status)

	var out []*Medication
	_, err := c.do(ctx, call{method: http.MethodGet, path: "/residents/" + residentID.String() + "/medications", query: query}, &out)
	return out, err
}

func (c *Client) CreateMedication(ctx context.Context, residentID uuid.UUID, req *CreateMedicationRequest) (*Medication, error) {
	var out Medication
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/residents/" + residentID.String() + "/medications", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyMedication checks the five rights without recording anything.
func (c *Client) VerifyMedication(ctx context.Context, req *VerifyRequest) (*Verification, error) {
	var out Verification
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/bcma/verify", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AdministerMedication(ctx context.Context, req *AdministerRequest) (*Administration, error) {
	var out Administration
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/bcma/administer", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) ([]*Task, *ListMeta, error) {
	query := map[string]string{}
	set(query, "assigned_to", q.AssignedTo)
	set(query, "status", q.Status)
	set(query, "priority", q.Priority)
	if q.Overdue {
		query["overdue"] = "true"
	}
	setInt(query, "page", q.Page)
	setInt(query, "page_size", q.PageSize)

	var out []*Task
	meta, err := c.do(ctx, call{method: http.MethodGet, path: "/tasks", query: query}, &out)
	return out, meta, err
}

func (c *Client) CreateTask(ctx context.Context, req *CreateTaskRequest) (*Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks", req)
}

func (c *Client) ReassignTask(ctx context.Context, id uuid.UUID, req *ReassignTaskRequest) (*Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks/"+id.String()+"/reassign", req)
}

func (c *Client) AcceptReassignment(ctx context.Context, id uuid.UUID) (*Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks/"+id.String()+"/accept-reassignment", nil)
}

func (c *Client) RejectReassignment(ctx context.Context, id uuid.UUID, reason string) (*Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks/"+id.String()+"/reject-reassignment", &RejectReassignmentRequest{Reason: reason})
}

func (c *Client) taskCall(ctx context.Context, method, path string, body interface{}) (*Task, error) {
	var out Task
	if _, err := c.do(ctx, call{method: method, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListGroups(ctx context.Context) ([]*Group, error) {
	var out []*Group
	_, err := c.do(ctx, call{method: http.MethodGet, path: "/groups"}, &out)
	return out, err
}

func (c *Client) SubmitIncidentReport(ctx context.Context, formID uuid.UUID, req *SubmitReportRequest) (*IncidentReport, error) {
	var out IncidentReport
	if _, err := c.do(ctx, call{method: http.MethodPost, path: "/incident/forms/" + formID.String() + "/reports", body: req}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListMedicalHistory(ctx context.Context, q MedicalHistoryQuery) ([]*MedicalHistoryRecord, error) {
	query := map[string]string{}
	set(query, "resident_id", q.ResidentID)
	set(query, "type", q.Type)
	set(query, "status", q.Status)

	var out []*MedicalHistoryRecord
	_, err := c.do(ctx, call{method: http.MethodGet, path: "/medical-history", query: query}, &out)
	return out, err
}

func set(q map[string]string, key, value string) {
	if value != "" {
		q[key] = value
	}
}

func setInt(q map[string]string, key string, value int) {
	if value > 0 {
		q[key] = strconv.Itoa(value)
	}
}
