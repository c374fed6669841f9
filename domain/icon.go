package domain

import "strings"

// IconKey names one of the symbols a goal or category can carry.
type IconKey string

const (
	IconTarget    IconKey = "target"
	IconBook      IconKey = "book"
	IconCode      IconKey = "code"
	IconDumbbell  IconKey = "dumbbell"
	IconBriefcase IconKey = "briefcase"
	IconHeart     IconKey = "heart"
	IconMusic     IconKey = "music"
	IconPalette   IconKey = "palette"
	IconBrain     IconKey = "brain"
	IconRocket    IconKey = "rocket"
	IconCoffee    IconKey = "coffee"
	IconStar      IconKey = "star"
)

var knownIcons = map[IconKey]struct{}{
	IconTarget: {}, IconBook: {}, IconCode: {}, IconDumbbell: {},
	IconBriefcase: {}, IconHeart: {}, IconMusic: {}, IconPalette: {},
	IconBrain: {}, IconRocket: {}, IconCoffee: {}, IconStar: {},
}

// ParseIcon normalizes raw and checks it against the known set. Empty input maps to IconTarget.
func ParseIcon(raw string) (IconKey, error) {
	key := IconKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return IconTarget, nil
	}
	if _, ok := knownIcons[key]; !ok {
		return "", ErrUnknownIcon
	}
	return key, nil
}
