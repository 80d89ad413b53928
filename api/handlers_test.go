package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workforce-engine/api"
	"github.com/warp/workforce-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	handler := api.NewHandler(memory.New(), 40*time.Hour, decimal.NewFromFloat(1.5))
	t.Cleanup(handler.Shutdown)

	srv := httptest.NewServer(api.NewRouter(handler, []string{"*"}))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func doJSONList(t *testing.T, url string) (*http.Response, []map[string]any) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func createEmployee(t *testing.T, srv *httptest.Server, id, name string) {
	t.Helper()
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"id":          id,
		"name":        name,
		"email":       name + "@example.com",
		"base_salary": "4400",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func submitLeave(t *testing.T, srv *httptest.Server, employeeID, leaveType, start, end string) map[string]any {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/"+employeeID+"/requests", map[string]any{
		"leave_type": leaveType,
		"start_date": start,
		"end_date":   end,
		"reason":     "test leave",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "body: %v", body)
	return body
}

// =============================================================================
// EMPLOYEES AND BALANCES
// =============================================================================

func TestCreateEmployee_SeedsDefaultBalances(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, balances := doJSONList(t, srv.URL+"/api/employees/emp-1/balances")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, balances, 4)

	byType := map[string]map[string]any{}
	for _, b := range balances {
		byType[b["type"].(string)] = b
	}
	assert.Equal(t, float64(20), byType["annual"]["total"])
	assert.Equal(t, float64(10), byType["sick"]["total"])
	assert.Equal(t, float64(5), byType["casual"]["total"])
	assert.Equal(t, float64(0), byType["unpaid"]["total"])
	assert.Equal(t, float64(20), byType["annual"]["remaining"])
}

func TestGetEmployee_Unknown_404(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/employees/ghost", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateEmployee_MissingName_400(t *testing.T) {
	srv := newTestServer(t)
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees", map[string]any{
		"email": "x@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// LEAVE LIFECYCLE OVER HTTP
// =============================================================================

func TestSubmitLeave_HoldsPending(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	body := submitLeave(t, srv, "emp-1", "annual", "2026-03-02", "2026-03-06")
	assert.Equal(t, "pending", body["status"])
	assert.Equal(t, float64(5), body["days"])

	_, balances := doJSONList(t, srv.URL+"/api/employees/emp-1/balances")
	for _, b := range balances {
		if b["type"] == "annual" {
			assert.Equal(t, float64(5), b["pending"])
			assert.Equal(t, float64(15), b["remaining"])
		}
	}
}

func TestSubmitLeave_Insufficient_422WithFigures(t *testing.T) {
	// GIVEN: 20 annual days
	// WHEN: Requesting 21
	// THEN: 422 carrying remaining/requested for the form

	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/requests", map[string]any{
		"leave_type": "annual",
		"start_date": "2026-03-01",
		"end_date":   "2026-03-21",
		"reason":     "long trip",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "insufficient_balance", body["code"])

	details := body["details"].(map[string]any)
	assert.Equal(t, float64(20), details["remaining"])
	assert.Equal(t, float64(21), details["requested"])
}

func TestSubmitLeave_Incomplete_422(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/requests", map[string]any{
		"leave_type": "annual",
		"start_date": "2026-03-02",
		"end_date":   "2026-03-06",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "incomplete_request", body["code"])
}

func TestSubmitLeave_InvertedDates_422(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/requests", map[string]any{
		"leave_type": "annual",
		"start_date": "2026-03-10",
		"end_date":   "2026-03-05",
		"reason":     "backwards",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "inverted_date_range", body["code"])
}

func TestSubmitLeave_Unpaid_BypassesBalance(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	body := submitLeave(t, srv, "emp-1", "unpaid", "2026-03-02", "2026-03-31")
	assert.Equal(t, float64(30), body["days"])
}

func TestApprove_MovesHoldToUsed(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")
	req := submitLeave(t, srv, "emp-1", "annual", "2026-03-02", "2026-03-06")

	resp, approved := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/approve", srv.URL, req["id"]), map[string]any{"actor_id": "mgr-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "approved", approved["status"])
	assert.Equal(t, "mgr-1", approved["approved_by"])

	_, balances := doJSONList(t, srv.URL+"/api/employees/emp-1/balances")
	for _, b := range balances {
		if b["type"] == "annual" {
			assert.Equal(t, float64(5), b["used"])
			assert.Equal(t, float64(0), b["pending"])
		}
	}

	// The decision produced a notification.
	_, notifications := doJSONList(t, srv.URL+"/api/employees/emp-1/notifications")
	require.Len(t, notifications, 1)
	assert.Equal(t, "Leave approved", notifications[0]["title"])
}

func TestReject_RequiresReason(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")
	req := submitLeave(t, srv, "emp-1", "sick", "2026-03-02", "2026-03-02")

	resp, _ := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/reject", srv.URL, req["id"]), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, rejected := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/reject", srv.URL, req["id"]), map[string]any{"reason": "no certificate"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "rejected", rejected["status"])
	assert.Equal(t, "no certificate", rejected["rejection_reason"])
}

func TestDecideTwice_409(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")
	req := submitLeave(t, srv, "emp-1", "annual", "2026-03-02", "2026-03-03")

	url := fmt.Sprintf("%s/api/requests/%s/approve", srv.URL, req["id"])
	resp, _ := doJSON(t, http.MethodPost, url, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, url, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPendingList_And_History(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")
	createEmployee(t, srv, "emp-2", "bob")

	submitLeave(t, srv, "emp-1", "annual", "2026-03-02", "2026-03-03")
	req2 := submitLeave(t, srv, "emp-2", "casual", "2026-03-05", "2026-03-05")

	_, pending := doJSONList(t, srv.URL+"/api/requests/pending")
	assert.Len(t, pending, 2)

	resp, _ := doJSON(t, http.MethodPost,
		fmt.Sprintf("%s/api/requests/%s/cancel", srv.URL, req2["id"]), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, pending = doJSONList(t, srv.URL+"/api/requests/pending")
	assert.Len(t, pending, 1)

	_, history := doJSONList(t, srv.URL+"/api/employees/emp-2/history")
	require.Len(t, history, 2)
	assert.Equal(t, "submitted", history[0]["action"])
	assert.Equal(t, "cancelled", history[1]["action"])
}

// =============================================================================
// ATTENDANCE OVER HTTP
// =============================================================================

func TestClockInOut_Flow(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, rec := doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/attendance/clock-in", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "open", rec["state"])
	assert.NotEmpty(t, rec["clock_in"])

	// Second clock-in conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/attendance/clock-in", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Elapsed endpoint shows a live display for the open session.
	resp, elapsed := doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/attendance/elapsed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "open", elapsed["session_state"])
	assert.Regexp(t, `^\d{2,}:\d{2}:\d{2}$`, elapsed["display"])

	resp, rec = doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/attendance/clock-out", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "closed", rec["state"])

	// Clock-out without an open session conflicts.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/attendance/clock-out", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAttendanceElapsed_ClosesAfterClockOut(t *testing.T) {
	// GIVEN: A session that has been clocked in and back out
	// WHEN: Reading the elapsed endpoint afterwards
	// THEN: The display reflects the closed record, not the pre-clock-out tick

	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/attendance/clock-in", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/employees/emp-1/attendance/clock-out", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, elapsed := doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/attendance/elapsed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "closed", elapsed["session_state"])
	assert.Equal(t, false, elapsed["live_refresher"])

	// After a full reset the same ID must not resurrect the old display.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	createEmployee(t, srv, "emp-1", "alice")

	resp, elapsed = doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/attendance/elapsed", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "none", elapsed["session_state"])
	assert.Equal(t, "00:00:00", elapsed["display"])
}

func TestAttendanceToday_NoSession(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, rec := doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/attendance/today", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "absent", rec["status"])
	assert.Equal(t, "none", rec["state"])
}

// =============================================================================
// PAYROLL OVER HTTP
// =============================================================================

func TestPayroll_DefaultsToCurrentMonth(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, summary := doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/payroll", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, time.Now().Format("2006-01"), summary["month"])
	assert.Equal(t, "4400", summary["gross"])
}

func TestPayroll_BadMonth_400(t *testing.T) {
	srv := newTestServer(t)
	createEmployee(t, srv, "emp-1", "alice")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/employees/emp-1/payroll?month=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
