package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

type location struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Dashboard base URL")
	query := flag.String("q", "Mumbai", "City to search for")
	flag.Parse()

	fmt.Println("Weather Dashboard Client Example")
	fmt.Println("================================")

	client := &http.Client{Timeout: 30 * time.Second}

	// Resolve the city name to a location
	fmt.Printf("\nSearching locations for %q...\n", *query)
	resp, err := client.Get(fmt.Sprintf("%s/api/locations?q=%s&limit=1", *baseURL, url.QueryEscape(*query)))
	if err != nil {
		fmt.Printf("Error fetching locations: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	var locations []location
	if err := json.NewDecoder(resp.Body).Decode(&locations); err != nil || len(locations) == 0 {
		fmt.Println("No matching location found.")
		return
	}
	selected := locations[0]
	fmt.Printf("Selected %s (%s)\n", selected.Label, selected.Value)

	// Run the search
	body, _ := json.Marshal(selected)
	searchResp, err := client.Post(*baseURL+"/api/search", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("Error running search: %v\n", err)
		os.Exit(1)
	}
	defer searchResp.Body.Close()

	viewBody, _ := io.ReadAll(searchResp.Body)

	var view map[string]any
	if err := json.Unmarshal(viewBody, &view); err != nil {
		fmt.Printf("Unexpected response (status %d): %s\n", searchResp.StatusCode, viewBody)
		os.Exit(1)
	}
	if view["error"] == true {
		fmt.Printf("Search failed: %v\n", view["errorMessage"])
		return
	}

	// Pretty print the result
	prettyJSON, _ := json.MarshalIndent(view, "", "  ")
	fmt.Printf("\nDashboard for %s:\n%s\n", selected.Label, string(prettyJSON))
}
