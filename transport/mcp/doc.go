// Package mcp exposes the pellet maze to AI agents over the Model Context
// Protocol.
//
// Client registers one MCP tool per REST operation and proxies every call
// to the HTTP API, so an agent and a browser spectator see the same
// sessions. Results are rendered as plain text: a status line, the events of
// the turn, the decision aids and the maze with P for the player and G for
// ghosts.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, restart_round, turn_history
//   - list_configs, game_instructions, describe_cell
//
// Transports:
//
//	client := mcp.NewClient("http://localhost:8080", version)
//
//	// stdio
//	server.ServeStdio(client.GetMCPServer())
//
//	// HTTP, one JSON-RPC message per POST
//	router.Handle("/mcp", client)
package mcp
