package content

import "strings"

// Canonical converts a legacy document into the canonical shape. Named tiers
// become their ordinals; level description/content become summary/explanation
// and the category pair is carried over as topic tags.
func (l *LegacyEducationalContent) Canonical() *EducationalContent {
	if l == nil {
		return nil
	}
	out := &EducationalContent{
		ID:          l.ID,
		Type:        TypeTopic,
		Name:        l.Title,
		Description: l.Description,
		LevelScheme: SchemeNamed,
		Levels:      make(LevelMap, len(l.Levels)),
		Status:      StatusPublished,
		Version:     1,
	}
	for t, lv := range l.Levels {
		out.Levels[t] = LevelContent{
			Level:       int(t),
			Title:       lv.Title,
			Summary:     lv.Description,
			Explanation: lv.Content,
			Flashcards:  lv.Flashcards,
			Quiz:        lv.Quiz,
		}
	}
	for _, topic := range []string{l.Category, l.Subcategory} {
		if topic = strings.TrimSpace(topic); topic != "" {
			out.Tags.Topics = append(out.Tags.Topics, topic)
		}
	}
	return out
}
