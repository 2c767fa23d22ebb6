package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandlerExposesMetrics(t *testing.T) {
	RecordOperation("CREATE_FOLDER", nil)
	RecordOperation("MOVE", errors.New("boom"))
	RecordBackendCall("memory", "create", 5*time.Millisecond)
	RecordHistory("undo")
	RecordConflict("rename")
	SetTreeSize(20)
	RecordRefresh(time.Millisecond)
	RecordUploadBytes(42)
	UploadStarted()
	UploadFinished()
	SetSyncTracked(3)
	SetSubscribers(1)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		`syftui_operations_total{operation="CREATE_FOLDER",status="ok"} 1`,
		`syftui_operations_total{operation="MOVE",status="error"} 1`,
		`syftui_history_total{action="undo"} 1`,
		`syftui_tree_size 20`,
		`syftui_upload_bytes_total 42`,
		`syftui_uploads_active 0`,
		`syftui_backend_call_duration_seconds_count{backend="memory",call="create"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
