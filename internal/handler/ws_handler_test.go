package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/anatomyace/anatomy-ace/internal/quiz"
	"github.com/anatomyace/anatomy-ace/internal/response"
	"github.com/anatomyace/anatomy-ace/internal/service"
	ws "github.com/anatomyace/anatomy-ace/internal/websocket"
)

func TestWriteQuizError_CarriesCode(t *testing.T) {
	h := NewWSHandler(nil, zerolog.Nop(), nil)
	errs := []error{service.ErrNotExpired, quiz.ErrSessionFinished, quiz.ErrNotAsking}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := ws.Wrap(raw)
		defer conn.Close()
		for _, e := range errs {
			h.writeQuizError(conn, h.log, e)
		}
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	want := []response.ErrCode{response.ErrTimeRemaining, response.ErrSessionFinished, response.ErrQuestionAnswered}
	for _, code := range want {
		var ev ws.ErrorResponse
		if err := client.ReadJSON(&ev); err != nil {
			t.Fatalf("read: %v", err)
		}
		if ev.Event != ws.EventError || ev.Code != code {
			t.Errorf("event = %+v, want code %s", ev, code)
		}
		if ev.Message != response.GetMessage(code) {
			t.Errorf("message = %q, want %q", ev.Message, response.GetMessage(code))
		}
	}
}
