package models

import "strings"

// ThemeCatalog lists the suggested story themes and audience ranges.
// Requests are not restricted to it.
type ThemeCatalog struct {
	Categories []ThemeCategory `json:"categories"`
	Audiences  []string        `json:"audiences"`
}

// ThemeCategory groups related themes
type ThemeCategory struct {
	Name   string   `json:"name"`
	Themes []string `json:"themes"`
}

// Category returns the named category, matched case-insensitively
func (c *ThemeCatalog) Category(name string) (ThemeCategory, bool) {
	for _, category := range c.Categories {
		if strings.EqualFold(category.Name, name) {
			return category, true
		}
	}
	return ThemeCategory{}, false
}

// DefaultTheme returns the first theme of the first category
func (c *ThemeCatalog) DefaultTheme() string {
	if len(c.Categories) == 0 || len(c.Categories[0].Themes) == 0 {
		return ""
	}
	return c.Categories[0].Themes[0]
}
