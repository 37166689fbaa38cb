package policy

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestUpdatePolicyRejectsBadEnums(t *testing.T) {
	store := &fakeStore{policy: &PointPolicy{
		ContentType: ContentTypeManual,
		UsageType:   UsageTypeManual,
		Status:      StatusInactive,
	}}
	h := NewHandler(store)

	body, _ := json.Marshal(map[string]interface{}{
		"content_type": "WEEKLY",
		"usage_type":   "FIXED",
		"fixed_amount": 10,
		"status":       "ACTIVE",
	})

	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestUpdatePolicyPersists(t *testing.T) {
	store := &fakeStore{policy: &PointPolicy{
		ContentType: ContentTypeManual,
		UsageType:   UsageTypeManual,
		Status:      StatusInactive,
	}}
	h := NewHandler(store)

	body, _ := json.Marshal(map[string]interface{}{
		"content_type": "AUTO",
		"usage_type":   "FIXED",
		"fixed_amount": 50,
		"status":       "ACTIVE",
	})

	req := httptest.NewRequest(http.MethodPut, "/", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.Update(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if store.policy.UsageType != UsageTypeFixed || store.policy.FixedAmount != 50 || store.policy.Status != StatusActive {
		t.Fatalf("policy not persisted: %+v", store.policy)
	}
}
