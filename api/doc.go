// Package api provides the HTTP REST API for the pellet maze server.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions                {"config_id": "classic"}
//   - GET    /api/sessions                ?sort=created|accessed&order=asc|desc&limit=N
//   - GET    /api/sessions/{id}
//   - DELETE /api/sessions/{id}
//
// Game operations:
//   - GET  /api/sessions/{id}/state
//   - POST /api/sessions/{id}/move       {"direction": "up"}
//   - POST /api/sessions/{id}/bulk-move  {"moves": ["up", "left"]}
//   - POST /api/sessions/{id}/restart    {"keep_score": true}
//   - GET  /api/sessions/{id}/history    ?page=1&limit=20&order=desc
//
// Levels:
//   - GET  /api/configs
//   - POST /api/configs                  engine.LevelConfig
//   - GET  /api/configs/{name}
//
// Other:
//   - GET /ws?session={id}   websocket spectator feed
//   - GET /healthz
//   - GET /metrics           Prometheus, when a handler is configured
//
// A direction outside up/down/left/right is rejected with 400 before it
// reaches the game. Moving into a wall is not an error: the turn is played,
// the response has "success": false and "attempted_to" names the cell.
//
// Move responses carry the turn ("turn"), the events it produced
// ("pellet", "power_pellet", "death", "victory", "game_over", ...) and the
// new game state including decision aids (possible_moves, local_view_3x3,
// ghost_risk, nearest_pellet_path). Every state change is also pushed to
// websocket spectators of the session.
//
// Errors are JSON objects with a single field:
//
//	{"error": "session ab12: session not found"}
//
// Status codes: 400 for malformed input or invalid levels, 404 for unknown
// sessions or levels, 500 otherwise.
package api
