package cmd

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rubiojr/diplomatarium/pkg/search"
	"github.com/rubiojr/diplomatarium/pkg/shards"
	"github.com/rubiojr/diplomatarium/pkg/storage"
)

const snippetLength = 240

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")).
			Background(lipgloss.Color("235")).
			Padding(0, 1).
			Margin(0, 0, 1, 0)

	refStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	hitStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Margin(0, 0, 1, 2)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	noDataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Margin(1, 0)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

var norwegianTitle = cases.Title(language.Norwegian)

// formatNumber formats a number with K/M suffixes for readability
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	} else if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	} else {
		return fmt.Sprintf("%.1fM", float64(n)/1000000)
	}
}

// formatPage renders one page of search hits
func formatPage(query string, page search.Page) string {
	var output strings.Builder

	title := fmt.Sprintf("Søk: %s", query)
	if query == "" {
		title = "Søk i datoområde"
	}
	output.WriteString(titleStyle.Render(title))
	output.WriteString("\n")

	if page.Total == 0 {
		output.WriteString(noDataStyle.Render("Ingen brev funnet."))
		output.WriteString("\n")
		return output.String()
	}

	output.WriteString(metaStyle.Render(fmt.Sprintf("Viser %d–%d av %s treff (side %d av %d)",
		page.First(), page.Last(), formatNumber(page.Total), page.Number, page.TotalPages)))
	output.WriteString("\n\n")

	for i, hit := range page.Hits {
		output.WriteString(formatHit(hit, page.First()+i))
		output.WriteString("\n")
	}
	return output.String()
}

// formatHit renders a single hit as a bordered block
func formatHit(hit search.Hit, index int) string {
	d := hit.Document

	var body strings.Builder
	header := fmt.Sprintf("%d. %s", index, d.Reference())
	body.WriteString(refStyle.Render(header))
	if archaic := d.ArchaicRef(); archaic != "" {
		body.WriteString(" " + metaStyle.Render(archaic))
	}
	body.WriteString("\n")

	place := d.BestPlace()
	if d.UncertainLocation {
		place += " (?)"
	}
	body.WriteString(metaStyle.Render(fmt.Sprintf("%s · %s · score %.2f", d.DisplayDate(), norwegianTitle.String(place), hit.Score)))

	if text := firstText(d.Summary, d.FullText); text != "" {
		body.WriteString("\n")
		body.WriteString(truncate(text, snippetLength))
	}
	return hitStyle.Render(body.String())
}

// formatStats renders corpus statistics and the load outcome
func formatStats(stats storage.Stats, progress shards.Progress) string {
	var output strings.Builder
	output.WriteString(titleStyle.Render("Brevsamlingen"))
	output.WriteString("\n")

	fmt.Fprintf(&output, "Letters:          %s\n", formatNumber(stats.Documents))
	fmt.Fprintf(&output, "With coordinates: %s\n", formatNumber(stats.WithCoordinates))
	fmt.Fprintf(&output, "Indexed terms:    %s\n", formatNumber(stats.Terms))
	fmt.Fprintf(&output, "Shards:           %d of %d loaded\n", stats.ShardsLoaded, stats.ShardsTotal)

	if stats.ShardsFailed > 0 {
		failed := make([]string, len(stats.FailedShards))
		for i, s := range stats.FailedShards {
			failed[i] = fmt.Sprintf("%d", s)
		}
		output.WriteString(warnStyle.Render(fmt.Sprintf("Failed shards:    %s", strings.Join(failed, ", "))))
		output.WriteString("\n")
	}

	if progress.Message != "" {
		output.WriteString("\n")
		output.WriteString(metaStyle.Render(progress.Message))
		output.WriteString("\n")
	}
	return output.String()
}

func firstText(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// truncate shortens s to at most n runes, cutting at a word boundary when
// one is near.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
