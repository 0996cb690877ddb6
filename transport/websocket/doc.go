// Package websocket provides the spectator feed for game sessions.
//
// A Hub keeps the connected clients per session and fans out two kinds of
// messages, both JSON:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "death", "data": {...}}
//
// The first message on every connection is a "connected" message carrying
// the client ID and the current game state. Game events (pellet, death,
// victory, game_over, ...) are queued and delivered by the hub's run loop;
// state updates are delivered immediately. A client whose buffer is full is
// disconnected.
//
// Clients only listen. Moves go through the REST API or MCP tools.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), state)
//	})
package websocket
