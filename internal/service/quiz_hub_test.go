package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"vocab_quiz_backend/internal/quiz"
	"vocab_quiz_backend/internal/view"
)

type recordingListener struct {
	mu    sync.Mutex
	pages []view.QuizPage
}

func (r *recordingListener) Publish(setKey string, page view.QuizPage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, page)
}

func (r *recordingListener) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

func TestListenerReceivesChanges(t *testing.T) {
	svc, sched, _ := newTestService(t, quiz.AdvanceAlways, 3)
	l := &recordingListener{}
	svc.SetListener(l)
	ctx := context.Background()

	svc.Open(ctx, "tag-1")
	if l.count() != 0 {
		t.Fatalf("open published %d pages", l.count())
	}

	svc.Dispatch(ctx, "tag-1", quiz.Action{Kind: quiz.ActionNext})
	if l.count() != 0 {
		t.Fatal("disabled control published a page")
	}

	svc.Dispatch(ctx, "tag-1", answer(1, "richtig"))
	if l.count() != 1 || l.pages[0].Progress.Answered != 1 {
		t.Fatalf("pages = %+v", l.pages)
	}

	sched.runAll()
	if l.count() != 2 || l.pages[1].Progress.Current != 2 {
		t.Fatalf("auto advance pages = %+v", l.pages)
	}
}

func dialHub(t *testing.T, hub *QuizHub, set string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, set)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn, out interface{}) string {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg WSMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	if out != nil {
		if err := json.Unmarshal(msg.Data, out); err != nil {
			t.Fatal(err)
		}
	}
	return msg.Type
}

func sendAction(t *testing.T, conn *websocket.Conn, a ActionMessage) {
	t.Helper()
	data, _ := json.Marshal(a)
	if err := conn.WriteJSON(WSMessage{Type: MessageAction, Data: data}); err != nil {
		t.Fatal(err)
	}
}

func TestHubPushesPages(t *testing.T) {
	svc, sched, _ := newTestService(t, quiz.AdvanceAlways, 3, 1)
	hub := NewQuizHub(svc)

	// 未知题集订阅回退后的题集
	conn := dialHub(t, hub, "tag-9")

	var page view.QuizPage
	if typ := readMessage(t, conn, &page); typ != MessagePage || page.Set != "tag-1" || page.Progress.Current != 1 {
		t.Fatalf("initial %s %+v", typ, page)
	}

	sendAction(t, conn, ActionMessage{Kind: quiz.ActionSelect, QuestionID: 1, Value: "richtig"})
	if typ := readMessage(t, conn, &page); typ != MessagePage || page.Progress.Answered != 1 {
		t.Fatalf("after answer %s %+v", typ, page.Progress)
	}

	sendAction(t, conn, ActionMessage{Kind: quiz.ActionSubmit})
	var errMsg ErrorMessage
	if typ := readMessage(t, conn, &errMsg); typ != MessageError || errMsg.Page.Progress.Current != 1 {
		t.Fatalf("submit %s %+v", typ, errMsg)
	}

	sched.runAll()
	if typ := readMessage(t, conn, &page); typ != MessagePage || page.Progress.Current != 2 {
		t.Fatalf("auto advance %s %+v", typ, page.Progress)
	}

	svc.Dispatch(context.Background(), "tag-2", answer(1, "richtig"))
	if hub.Connected("tag-2") || !hub.Connected("tag-1") {
		t.Fatalf("connected tag-1=%v tag-2=%v", hub.Connected("tag-1"), hub.Connected("tag-2"))
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Connected("tag-1") {
		if time.Now().After(deadline) {
			t.Fatal("closed connection still subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServeWsUnavailable(t *testing.T) {
	qs := newStubQuestions(1)
	qs.err = context.DeadlineExceeded
	svc := NewQuizService(qs, nil, nil, &fakeScheduler{}, testPolicy(quiz.AdvanceOff))
	hub := NewQuizHub(svc)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, "tag-1")
	}))
	defer srv.Close()

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err == nil {
		t.Fatal("dial succeeded")
	}
	if resp == nil || resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestHubReplacesConnection(t *testing.T) {
	svc, _, _ := newTestService(t, quiz.AdvanceOff, 2)
	hub := NewQuizHub(svc)

	first := dialHub(t, hub, "tag-1")
	readMessage(t, first, nil)
	second := dialHub(t, hub, "tag-1")
	readMessage(t, second, nil)

	// 旧连接收到关闭帧
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err == nil {
		t.Fatal("replaced connection still open")
	}

	sendAction(t, second, ActionMessage{Kind: quiz.ActionSelect, QuestionID: 1, Value: "richtig"})
	var page view.QuizPage
	if typ := readMessage(t, second, &page); typ != MessagePage || page.Progress.Answered != 1 {
		t.Fatalf("after answer %s %+v", typ, page.Progress)
	}
	if !hub.Connected("tag-1") {
		t.Fatal("current connection dropped")
	}
}
