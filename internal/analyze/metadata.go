package analyze

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/siteaudit/siteaudit/internal/model"
)

// mainContentSelectors are tried in order to locate the page's main
// content block for duplicate detection and readability scoring.
var mainContentSelectors = []string{"main", "article", "div.content", "div#content"}

// ExtractMetadata pulls the on-page metadata out of a rendered document
// and updates the session's duplicate trackers and issue counters.
func (a *Analyzer) ExtractMetadata(doc *goquery.Document, pageURL string) *model.Metadata {
	md := &model.Metadata{
		Headings: make(map[string][]string),
		Images:   []model.Image{},
	}

	a.extractTitle(doc, pageURL, md)
	a.extractDescription(doc, pageURL, md)
	a.extractHeadings(doc, md)
	a.extractImages(doc, md)
	a.scoreMainContent(doc, pageURL, md)

	return md
}

func (a *Analyzer) extractTitle(doc *goquery.Document, pageURL string, md *model.Metadata) {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		a.report.CrawlIssues.MissingTitle++
		return
	}
	text := strings.TrimSpace(title.Text())
	md.TitleTag = text
	if urls, seen := a.titlesSeen[text]; seen {
		a.report.CrawlIssues.DuplicateTitles++
		a.titlesSeen[text] = append(urls, pageURL)
	} else {
		a.titlesSeen[text] = []string{pageURL}
	}
}

func (a *Analyzer) extractDescription(doc *goquery.Document, pageURL string, md *model.Metadata) {
	desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	desc = strings.TrimSpace(desc)
	if !ok || desc == "" {
		a.report.CrawlIssues.MissingMetaDescription++
		return
	}
	md.MetaDescription = desc
	if urls, seen := a.descriptionsSeen[desc]; seen {
		a.report.CrawlIssues.DuplicateMetaDescriptions++
		a.descriptionsSeen[desc] = append(urls, pageURL)
	} else {
		a.descriptionsSeen[desc] = []string{pageURL}
	}
}

func (a *Analyzer) extractHeadings(doc *goquery.Document, md *model.Metadata) {
	for level := 1; level <= 6; level++ {
		tag := fmt.Sprintf("h%d", level)
		doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
			md.Headings[tag] = append(md.Headings[tag], strings.TrimSpace(s.Text()))
		})
	}
	if len(md.Headings["h1"]) == 0 {
		a.report.CrawlIssues.MissingH1++
	}
}

func (a *Analyzer) extractImages(doc *goquery.Document, md *model.Metadata) {
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		img := model.Image{
			Src: s.AttrOr("src", ""),
			Alt: s.AttrOr("alt", ""),
		}
		if img.Alt == "" {
			a.report.CrawlIssues.ImagesMissingAlt++
		}
		md.Images = append(md.Images, img)
	})
}

// scoreMainContent locates the main content block, tracks duplicate
// content by hash, and computes the Flesch-Kincaid grade. Pages where no
// content can be located keep a nil grade and are not tracked.
func (a *Analyzer) scoreMainContent(doc *goquery.Document, pageURL string, md *model.Metadata) {
	text := a.mainContentText(doc, pageURL)
	if text == "" {
		return
	}

	hash := model.HashContent(text)
	if urls, seen := a.contentSeen[hash]; seen {
		a.report.CrawlIssues.DuplicateContent++
		a.contentSeen[hash] = append(urls, pageURL)
	} else {
		a.contentSeen[hash] = []string{pageURL}
	}

	if grade, ok := fleschKincaidGrade(text); ok {
		md.FleschKincaidGrade = &grade
	}
}

// mainContentText returns the text of the first matching content
// selector, falling back to readability extraction over the whole
// document when no selector matches.
func (a *Analyzer) mainContentText(doc *goquery.Document, pageURL string) string {
	for _, selector := range mainContentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 {
			return normalizeText(sel.Text())
		}
	}

	html, err := doc.Html()
	if err != nil {
		return ""
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		a.logger.Debug("readability extraction failed", "url", pageURL, "error", err)
		return ""
	}
	return normalizeText(article.TextContent)
}

// normalizeText collapses all runs of whitespace to single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
