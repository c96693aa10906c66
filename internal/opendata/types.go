package opendata

// RecordsResponse mirrors /{dataset}/records.
type RecordsResponse struct {
	TotalCount int      `json:"total_count"`
	Results    []Record `json:"results"`
}

// Record is one hourly row. Measurements are nullable in the dataset.
type Record struct {
	HeureDeParis string   `json:"heure_de_paris"`
	Temperature  *float64 `json:"temperature_en_degre_c"`
	Humidity     *float64 `json:"humidite"`
	Pressure     *float64 `json:"pression"`
}
