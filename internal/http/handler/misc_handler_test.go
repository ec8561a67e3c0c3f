package handler_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pulse-crm/crm-api/internal/domain"
	"github.com/pulse-crm/crm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscussionHandler_NameRequired(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleUser, "Ann")

	w := call(t, http.MethodPost, "/discussions", "/discussions", h.discussion.Create, ann, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, http.MethodPost, "/discussions", "/discussions", h.discussion.Create, ann, domain.CreateDiscussionRequest{Name: "Pricing ideas"})
	require.Equal(t, http.StatusCreated, w.Code)
	var d domain.DiscussionDTO
	decode(t, w, &d)

	w = call(t, http.MethodPost, "/discussions/{id}/chats", "/discussions/"+itoa(d.ID)+"/chats", h.discussion.AddChat, ann,
		domain.SendChatRequest{Content: "what about tiers?"})
	assert.Equal(t, http.StatusCreated, w.Code)

	bob := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleUser, "Bob")
	w = call(t, http.MethodGet, "/discussions/{id}", "/discussions/"+itoa(d.ID), h.discussion.Get, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "discussions are private to their owner")
}

func TestProfileHandler_RoleChanges(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	bob := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleUser, "Bob")

	w := call(t, http.MethodPut, "/profiles/{id}/role", "/profiles/"+itoa(bob.ID)+"/role", h.profile.UpdateRole, ann,
		domain.UpdateRoleRequest{Role: domain.ProfileRoleAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	var p domain.ProfileDTO
	decode(t, w, &p)
	assert.Equal(t, domain.ProfileRoleAdmin, p.Role)

	w = call(t, http.MethodPut, "/profiles/{id}/role", "/profiles/"+itoa(ann.ID)+"/role", h.profile.UpdateRole, ann,
		domain.UpdateRoleRequest{Role: domain.ProfileRoleUser})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(t, http.MethodPut, "/profiles/{id}/role", "/profiles/"+itoa(bob.ID)+"/role", h.profile.UpdateRole, ann,
		map[string]string{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNotificationHandler_Seen(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleUser, "Ann")
	n := &domain.Notification{ProfileID: ann.ID, Content: "Task overdue", Type: domain.NotificationTypeTaskOverdue}
	require.NoError(t, h.db.Create(n).Error)

	w := call(t, http.MethodGet, "/notifications", "/notifications?unread=true", h.notification.List, ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.NotificationDTO
	decode(t, w, &list)
	assert.Len(t, list, 1)

	w = call(t, http.MethodPost, "/notifications/{id}/seen", "/notifications/"+itoa(n.ID)+"/seen", h.notification.MarkSeen, ann, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = call(t, http.MethodGet, "/notifications/count", "/notifications/count", h.notification.Count, ann, nil)
	var count domain.NotificationCountDTO
	decode(t, w, &count)
	assert.EqualValues(t, 0, count.Unread)
}

func TestFileHandler_UploadDownload(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleUser, "Ann")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "offer.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("price list"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(t, http.MethodPost, "/files", h.file.Upload, req, ann)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var file domain.FileDTO
	decode(t, w, &file)
	assert.Equal(t, "offer.txt", file.VName)
	assert.EqualValues(t, 10, file.Size)

	w = call(t, http.MethodGet, "/files/{id}/download", "/files/"+itoa(file.ID)+"/download", h.file.Download, ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "offer.txt")
	got, _ := io.ReadAll(w.Body)
	assert.Equal(t, "price list", string(got))

	req = httptest.NewRequest(http.MethodPost, "/files", bytes.NewBufferString("not multipart"))
	req.Header.Set("Content-Type", "text/plain")
	w = serve(t, http.MethodPost, "/files", h.file.Upload, req, ann)
	assert.NotEqual(t, http.StatusCreated, w.Code)

	w = call(t, http.MethodGet, "/files/{id}/download", "/files/999/download", h.file.Download, ann, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTaskHandler_CompleteAndAssign(t *testing.T) {
	h := newHandlers(t)
	acme := testutil.CreateCompany(t, h.db, "Acme")
	other := testutil.CreateCompany(t, h.db, "Other")
	ann := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleAdmin, "Ann")
	bob := testutil.CreateProfile(t, h.db, acme.ID, domain.ProfileRoleUser, "Bob")
	zed := testutil.CreateProfile(t, h.db, other.ID, domain.ProfileRoleUser, "Zed")
	task := testutil.CreateTask(t, h.db, ann.ID, "Call back", domain.TaskStatusPending, nil)
	taskPath := "/tasks/" + itoa(task.ID)

	w := call(t, http.MethodPost, "/tasks/{id}/assign", taskPath+"/assign", h.task.Assign, ann, domain.AssignTaskRequest{ProfileID: bob.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(t, http.MethodPost, "/tasks/{id}/assign", taskPath+"/assign", h.task.Assign, ann, domain.AssignTaskRequest{ProfileID: zed.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(t, http.MethodPost, "/tasks/{id}/complete", taskPath+"/complete", h.task.Complete, ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var done domain.TaskDTO
	decode(t, w, &done)
	assert.Equal(t, domain.TaskStatusCompleted, done.Status)

	w = call(t, http.MethodGet, "/tasks", "/tasks?status=bogus", h.task.List, ann, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
