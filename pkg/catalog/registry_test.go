package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/travelmesh/a2a-go/pkg/a2a"
	"github.com/travelmesh/a2a-go/pkg/client"
	"github.com/travelmesh/a2a-go/pkg/errors"
	"github.com/travelmesh/a2a-go/pkg/jsonrpc"
)

// agentServer fakes one A2A server publishing a mutable set of cards.
type agentServer struct {
	mu    sync.Mutex
	cards []a2a.AgentCard
	srv   *httptest.Server
}

func newAgentServer(cards ...a2a.AgentCard) *agentServer {
	fake := &agentServer{cards: cards}

	fake.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req jsonrpc.Request

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(jsonrpc.NewErrorResponse(nil, errors.ErrParseError))
			return
		}

		fake.mu.Lock()
		cards := append([]a2a.AgentCard{}, fake.cards...)
		fake.mu.Unlock()

		switch req.Method {
		case a2a.MethodDiscover:
			json.NewEncoder(w).Encode(jsonrpc.NewResponse(req.ID, a2a.DiscoverResult{Agents: cards}))
		case a2a.MethodExecute:
			var params a2a.ExecuteParams
			if err := json.Unmarshal(req.Params, &params); err != nil {
				json.NewEncoder(w).Encode(jsonrpc.NewErrorResponse(req.ID, errors.ErrInvalidParams))
				return
			}
			json.NewEncoder(w).Encode(jsonrpc.NewResponse(req.ID, a2a.ExecuteResult{
				Output:  map[string]any{"message": "handled by " + params.AgentID},
				Context: params.Context,
			}))
		default:
			json.NewEncoder(w).Encode(jsonrpc.NewErrorResponse(req.ID, errors.ErrMethodNotFound))
		}
	}))

	return fake
}

func (fake *agentServer) setCards(cards ...a2a.AgentCard) {
	fake.mu.Lock()
	fake.cards = cards
	fake.mu.Unlock()
}

func card(id, name, capability string) a2a.AgentCard {
	return a2a.AgentCard{
		ID: id, Name: name, Version: a2a.ProtocolVersion,
		Capabilities: []a2a.AgentCapability{{Type: a2a.CapabilityTypeText, Name: capability}},
	}
}

func TestRegistry(t *testing.T) {
	Convey("Given a registry and two agent servers", t, func() {
		ctx := context.Background()

		one := newAgentServer(card("triage-agent", "Triage Agent", "triage"))
		defer one.srv.Close()

		two := newAgentServer(card("itinerary-planning-agent", "Itinerary Planning Agent", "plan_itinerary"))
		defer two.srv.Close()

		registry := NewRegistry()

		Convey("When both servers are registered", func() {
			// a single attempt keeps the dead-server cases fast
			So(registry.RegisterServer(ctx, "one", client.Config{BaseURL: one.srv.URL, Retries: 1}), ShouldBeNil)
			So(registry.RegisterServer(ctx, "two", client.Config{BaseURL: two.srv.URL, Retries: 1}), ShouldBeNil)

			Convey("Then agents from both are addressable by id", func() {
				entry, ok := registry.FindAgent("triage-agent")
				So(ok, ShouldBeTrue)
				So(entry.Card.Name, ShouldEqual, "Triage Agent")

				_, ok = registry.FindAgent("itinerary-planning-agent")
				So(ok, ShouldBeTrue)
			})

			Convey("Then the merged listing is sorted by agent id", func() {
				agents := registry.ListAllAgents()
				So(agents, ShouldHaveLength, 2)
				So(agents[0].ID, ShouldEqual, "itinerary-planning-agent")
				So(agents[1].ID, ShouldEqual, "triage-agent")
			})

			Convey("Then server names are tracked", func() {
				So(registry.ServerNames(), ShouldResemble, []string{"one", "two"})
			})

			Convey("And a duplicate name is rejected", func() {
				So(registry.RegisterServer(ctx, "one", client.Config{BaseURL: two.srv.URL}), ShouldNotBeNil)
			})

			Convey("And Execute routes to the hosting server", func() {
				result, err := registry.Execute(ctx, "triage-agent", "triage", "beach holiday", nil)
				So(err, ShouldBeNil)

				output, ok := result.Output.(map[string]any)
				So(ok, ShouldBeTrue)
				So(output["message"], ShouldEqual, "handled by triage-agent")
			})

			Convey("And Execute on an unknown id reports a registry miss", func() {
				_, err := registry.Execute(ctx, "ghost", "triage", "hi", nil)

				notFound, ok := err.(*NotFoundError)
				So(ok, ShouldBeTrue)
				So(notFound.AgentID, ShouldEqual, "ghost")
			})

			Convey("When a server's agent set changes and the registry refreshes", func() {
				one.setCards(card("web-search-agent", "Web Search Agent", "web_search"))

				So(registry.Refresh(ctx), ShouldBeNil)

				Convey("Then stale agents are gone and new ones are known", func() {
					_, ok := registry.FindAgent("triage-agent")
					So(ok, ShouldBeFalse)

					_, ok = registry.FindAgent("web-search-agent")
					So(ok, ShouldBeTrue)

					_, ok = registry.FindAgent("itinerary-planning-agent")
					So(ok, ShouldBeTrue)
				})
			})

			Convey("When one server dies and the registry refreshes", func() {
				two.srv.Close()

				err := registry.Refresh(ctx)

				Convey("Then the refresh reports the failure but keeps the healthy server's agents", func() {
					So(err, ShouldNotBeNil)

					_, ok := registry.FindAgent("triage-agent")
					So(ok, ShouldBeTrue)

					_, ok = registry.FindAgent("itinerary-planning-agent")
					So(ok, ShouldBeFalse)
				})
			})
		})

		Convey("When a server is unreachable at registration time", func() {
			err := registry.RegisterServer(ctx, "dead", client.Config{
				BaseURL: "http://127.0.0.1:1", Retries: 1, Timeout: 100 * time.Millisecond,
			})

			Convey("Then registration still succeeds with zero known agents", func() {
				So(err, ShouldBeNil)
				So(registry.ServerNames(), ShouldResemble, []string{"dead"})
				So(registry.ListAllAgents(), ShouldBeEmpty)
			})
		})
	})
}
