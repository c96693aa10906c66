// Package storage keeps the downloaded reports of each station on disk.
//
// Every station owns one JSON file, station_<key>.json, in the data
// directory. Saving merges the new batch with what is already stored so the
// history grows beyond the seven days the API serves. Writes go through a
// temporary file and a rename, which lets the watch package pick up complete
// files only.
package storage
