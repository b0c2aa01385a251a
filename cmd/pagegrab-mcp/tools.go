package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/pagegrab/models"
)

// pageScraper is the part of scraper.Scraper the tools need.
type pageScraper interface {
	Scrape(ctx context.Context, url string) models.ScrapedContent
	ScrapeAll(ctx context.Context, urls []string, concurrency int) []models.ScrapedContent
}

const batchConcurrency = 4

func registerTools(s *server.MCPServer, sc pageScraper) {
	scrapeURLTool := mcp.NewTool("scrape_url",
		mcp.WithDescription("Fetch a web page and return its title, headings, meta description and main text. Falls back to a headless browser for pages that need JavaScript."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to scrape"),
		),
	)
	s.AddTool(scrapeURLTool, handleScrapeURL(sc))

	batchScrapeTool := mcp.NewTool("batch_scrape",
		mcp.WithDescription(fmt.Sprintf("Scrape up to %d URLs in parallel and return the text of each.", models.MaxBatchURLs)),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of URLs to scrape"),
		),
	)
	s.AddTool(batchScrapeTool, handleBatchScrape(sc))
}

func handleScrapeURL(sc pageScraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		res := sc.Scrape(ctx, url)
		if res.Failed() {
			return mcp.NewToolResultError(fmt.Sprintf("%s: %s", res.ErrorString(), url)), nil
		}
		return mcp.NewToolResultText(formatContent(res)), nil
	}
}

func handleBatchScrape(sc pageScraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil || len(urls) == 0 {
			return mcp.NewToolResultError("urls is required and must be a non-empty array of strings"), nil
		}
		if len(urls) > models.MaxBatchURLs {
			return mcp.NewToolResultError(fmt.Sprintf("maximum %d URLs per batch", models.MaxBatchURLs)), nil
		}

		results := sc.ScrapeAll(ctx, urls, batchConcurrency)

		var sb strings.Builder
		for i, res := range results {
			if res.Failed() {
				fmt.Fprintf(&sb, "--- [%d] FAILED: %s (%s) ---\n\n", i+1, res.URL, res.ErrorString())
				continue
			}
			fmt.Fprintf(&sb, "--- [%d] %s ---\n%s\n\n", i+1, res.URL, formatContent(res))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatContent renders a successful result as a short header plus the text.
func formatContent(res models.ScrapedContent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\nSource: %s\n", res.Title, res.URL)
	if res.MetaDescription != "" {
		fmt.Fprintf(&sb, "Description: %s\n", res.MetaDescription)
	}
	sb.WriteString("\n")
	sb.WriteString(res.Content)
	return sb.String()
}
