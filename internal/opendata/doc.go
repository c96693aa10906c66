// Package opendata is the HTTP client for the municipal open-data portal
// (Opendatasoft explore API v2.1) that publishes one dataset per weather
// station.
//
// Each station ID from the catalog is a dataset identifier. FetchRecords asks
// for the last seven days of on-the-hour readings, newest first, capped at 100
// rows:
//
//	GET {base}/{station}/records?select=...&where=...&order_by=...&limit=100
//
// The client only transports rows; conversion and range checks live in the
// pipeline package.
package opendata
