package catalog

const (
	// DefaultIcon is shown for tools without a tool or category icon.
	DefaultIcon = "tool"

	// DefaultColor is used for tools without a category color.
	DefaultColor = "gray"
)

// ResolveIcon picks the tool icon, then the category icon, then DefaultIcon.
func ResolveIcon(toolIcon, categoryIcon string) string {
	if toolIcon != "" {
		return toolIcon
	}
	if categoryIcon != "" {
		return categoryIcon
	}
	return DefaultIcon
}

// ResolveColor picks the tool color, then the category color, then DefaultColor.
func ResolveColor(toolColor, categoryColor string) string {
	if toolColor != "" {
		return toolColor
	}
	if categoryColor != "" {
		return categoryColor
	}
	return DefaultColor
}
