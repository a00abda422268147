package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nova-forge/factorial-sim/fixed"
	"github.com/nova-forge/factorial-sim/id"
)

// itemData is the JSON shape of one item type.
type itemData struct {
	Name       string         `json:"name"`
	Properties []propertyData `json:"properties"`
}

// propertyData is the JSON shape of one property definition.
type propertyData struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"` // "fixed64", "fixed32", "u32", "u8"
	Default *float64 `json:"default"`
}

// recipeEntryData is the JSON shape of one recipe input/output line,
// referencing an item by name rather than id.
type recipeEntryData struct {
	Item     string `json:"item"`
	Quantity uint32 `json:"quantity"`
}

// recipeData is the JSON shape of one recipe.
type recipeData struct {
	Name     string            `json:"name"`
	Inputs   []recipeEntryData `json:"inputs"`
	Outputs  []recipeEntryData `json:"outputs"`
	Duration uint64            `json:"duration"`
}

// buildingData is the JSON shape of one building template, referencing its
// recipe by name.
type buildingData struct {
	Name   string  `json:"name"`
	Recipe *string `json:"recipe"`
}

// registryData is the top-level JSON document layout.
type registryData struct {
	Items     []itemData     `json:"items"`
	Recipes   []recipeData   `json:"recipes"`
	Buildings []buildingData `json:"buildings"`
}

func parseProperty(p propertyData) PropertyDef {
	def := 0.0
	if p.Default != nil {
		def = *p.Default
	}
	switch p.Type {
	case "fixed64":
		return PropertyDef{Name: p.Name, Size: PropertyFixed64, Default: PropertyDefault{Fixed64: fixed.FromFloat64(def)}}
	case "fixed32":
		return PropertyDef{Name: p.Name, Size: PropertyFixed32, Default: PropertyDefault{Fixed32: fixed.FromFloat32(def)}}
	case "u8":
		return PropertyDef{Name: p.Name, Size: PropertyU8, Default: PropertyDefault{U8: uint8(def)}}
	default:
		return PropertyDef{Name: p.Name, Size: PropertyU32, Default: PropertyDefault{U32: uint32(def)}}
	}
}

// LoadJSON builds a Registry from a JSON document: a top-level object with
// "items", "recipes", and "buildings" arrays. Recipes and buildings
// reference items and recipes by name; names are resolved to ids as the
// registry is assembled, in document order, so a registry built from the
// same file on every host assigns identical ids.
func LoadJSON(data []byte) (*Registry, error) {
	var doc registryData
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errf("LoadJSON", "parse: %v", err)
	}
	return buildFromData(doc)
}

// LoadJSONFile loads a registry from a JSON file on disk.
func LoadJSONFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errf("LoadJSONFile", "read %s: %v", path, err)
	}
	return LoadJSON(data)
}

func buildFromData(doc registryData) (*Registry, error) {
	b := NewBuilder()

	for _, item := range doc.Items {
		props := make([]PropertyDef, len(item.Properties))
		for i, p := range item.Properties {
			props[i] = parseProperty(p)
		}
		if _, err := b.RegisterItem(item.Name, props); err != nil {
			return nil, err
		}
	}

	for _, recipe := range doc.Recipes {
		inputs, err := resolveEntries(b, recipe.Inputs)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", recipe.Name, err)
		}
		outputs, err := resolveEntries(b, recipe.Outputs)
		if err != nil {
			return nil, fmt.Errorf("recipe %q: %w", recipe.Name, err)
		}
		if _, err := b.RegisterRecipe(recipe.Name, inputs, outputs, recipe.Duration); err != nil {
			return nil, err
		}
	}

	for _, building := range doc.Buildings {
		var recipeID *id.RecipeId
		if building.Recipe != nil {
			rid, ok := b.recipesByName[*building.Recipe]
			if !ok {
				return nil, errf("LoadJSON", "building %q: unknown recipe %q", building.Name, *building.Recipe)
			}
			recipeID = &rid
		}
		if _, err := b.RegisterBuilding(building.Name, recipeID); err != nil {
			return nil, err
		}
	}

	return b.Build(), nil
}

func resolveEntries(b *Builder, entries []recipeEntryData) ([]RecipeEntry, error) {
	out := make([]RecipeEntry, len(entries))
	for i, e := range entries {
		itemID, ok := b.itemsByName[e.Item]
		if !ok {
			return nil, errf("LoadJSON", "unknown item reference %q", e.Item)
		}
		out[i] = RecipeEntry{Item: itemID, Quantity: e.Quantity}
	}
	return out, nil
}
