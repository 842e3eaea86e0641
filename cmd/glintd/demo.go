package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/glint-ui/glint/pkg/pages"
	"github.com/glint-ui/glint/pkg/protocol"
	"github.com/glint-ui/glint/pkg/server"
	"github.com/glint-ui/glint/pkg/toast"
)

// registerDemoPages installs the built-in demo: a todo list exercising
// state and targeted updates, and a story page exercising streaming.
func registerDemoPages(srv *server.Server) {
	srv.RegisterPage("/", todoPage(srv))
	srv.RegisterPage("/story", storyPage(srv))
}

func todoPage(srv *server.Server) pages.PageFunc {
	return func(ps pages.Session) *protocol.Node {
		s := ps.(*server.Session)

		addID := s.Bind(addTodo, server.WithProps("todo-input"))
		clearID := s.Bind(server.Serial(clearTodos, func(s *server.Session, _ map[string]any) error {
			toast.Info(s, "list cleared")
			return nil
		}))
		navID := s.Bind(func(s *server.Session, _ map[string]any) error {
			return srv.Navigator().Navigate(s, "/story")
		})

		todos, _ := s.GetDefault("todos", []string(nil)).([]string)

		list := protocol.El("ul").WithID("todo-list")
		for i, text := range todos {
			list.Append(todoItem(i+1, text))
		}

		return protocol.El("div",
			protocol.El("h1", protocol.Text("Todos")),
			protocol.El("span", protocol.Text("")).WithID("demo-clock"),
			protocol.El("input").
				WithID("todo-input").
				WithProp("type", "text").
				WithProp("data-capture", "todo-input"),
			protocol.El("button", protocol.Text("Add")).
				WithProp("data-on-click", addID),
			protocol.El("button", protocol.Text("Clear")).
				WithProp("data-on-click", clearID),
			list,
			protocol.El("span", protocol.Text(fmt.Sprintf("%d", len(todos)))).
				WithID("todo-count"),
			protocol.El("button", protocol.Text("Story demo")).
				WithProp("data-on-click", navID),
			toast.Host(),
		).WithID("page-root")
	}
}

func todoItem(n int, text string) *protocol.Node {
	return protocol.El("li", protocol.Text(text)).WithID(fmt.Sprintf("todo-%d", n))
}

func addTodo(s *server.Session, args map[string]any) error {
	text, _ := args["todo-input"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		toast.Warning(s, "nothing to add")
		return nil
	}

	todos, _ := s.GetDefault("todos", []string(nil)).([]string)
	todos = append(todos, text)
	s.Set("todos", todos)

	ch := s.Channel()
	ch.Send(protocol.NewAppend("todo-list", todoItem(len(todos), text)))
	ch.Send(protocol.NewUpdateText("todo-count", fmt.Sprintf("%d", len(todos))))
	ch.Send(protocol.NewUpdateProps("todo-input", map[string]string{"value": ""}))
	return nil
}

func clearTodos(s *server.Session, _ map[string]any) error {
	s.Set("todos", []string(nil))
	ch := s.Channel()
	ch.Send(protocol.NewReplace("todo-list", protocol.El("ul").WithID("todo-list")))
	ch.Send(protocol.NewUpdateText("todo-count", "0"))
	return nil
}

func storyPage(srv *server.Server) pages.PageFunc {
	return func(ps pages.Session) *protocol.Node {
		s := ps.(*server.Session)

		tellID := s.Bind(tellStory)
		backID := s.Bind(func(s *server.Session, _ map[string]any) error {
			return srv.Navigator().Navigate(s, "/")
		})

		return protocol.El("div",
			protocol.El("h1", protocol.Text("Story")),
			protocol.El("span", protocol.Text("")).WithID("demo-clock"),
			protocol.El("button", protocol.Text("Tell me a story")).
				WithProp("data-on-click", tellID),
			protocol.El("div").WithID("story-output"),
			protocol.El("button", protocol.Text("Back")).
				WithProp("data-on-click", backID),
			toast.Host(),
		).WithID("page-root")
	}
}

func tellStory(s *server.Session, _ map[string]any) error {
	words := strings.Fields(
		"Once upon a time a server held every scrap of state and the browser just painted what it was told")

	return s.WithStream("story-output", func(st *server.Stream) error {
		for _, w := range words {
			if err := st.Write(w + " "); err != nil {
				return err
			}
			select {
			case <-s.Done():
				return nil
			case <-time.After(80 * time.Millisecond):
			}
		}
		return nil
	})
}

// broadcastClock pushes the current time at every connected session.
func broadcastClock(b *server.Broadcaster, now time.Time) {
	b.Send(protocol.NewUpdateText("demo-clock", now.Format("15:04:05")))
}
