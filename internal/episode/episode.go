// Package episode defines the Episode entity and the resources that load it.
package episode

import (
	"github.com/five82/episodes/internal/resource"
)

// Episode is a single published episode.
type Episode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FromJSON builds an Episode from a deserialized JSON object. Both id and
// title must be present and must be strings.
func FromJSON(v any) (Episode, error) {
	obj, err := resource.Object(v)
	if err != nil {
		return Episode{}, err
	}
	id, err := resource.String(obj, "id")
	if err != nil {
		return Episode{}, err
	}
	title, err := resource.String(obj, "title")
	if err != nil {
		return Episode{}, err
	}
	return Episode{ID: id, Title: title}, nil
}

// One returns a resource for a single episode object at location.
func One(location string) resource.Resource[Episode] {
	return resource.NewJSON(location, FromJSON)
}

// All returns a resource for an array of episodes at location.
func All(location string, policy resource.ListPolicy) resource.Resource[[]Episode] {
	return resource.NewJSON(location, func(v any) ([]Episode, error) {
		return resource.DecodeList(v, policy, FromJSON)
	})
}

// Titles returns the titles of episodes in order.
func Titles(episodes []Episode) []string {
	out := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, ep.Title)
	}
	return out
}
