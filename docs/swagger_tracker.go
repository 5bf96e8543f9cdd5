package docs

// @title           Bus Tracker API
// @version         1.0
// @description     Bus tracker service ingests GPS location reports from buses, validates and persists them, and pushes every accepted report to connected WebSocket subscribers in real time.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    http://www.swagger.io/support
// @contact.email  support@swagger.io

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
