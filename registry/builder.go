package registry

import "github.com/nova-forge/factorial-sim/id"

// Builder assembles a Registry in three phases (items, then recipes, then
// buildings) so recipes and buildings can reference items/recipes already
// registered earlier in the same build. Ids are assigned in registration
// order, starting at zero, matching the order callers register content —
// callers building identical registries from the same data file on every
// host get identical ids for free.
type Builder struct {
	items     []ItemDef
	recipes   []RecipeDef
	buildings []BuildingDef

	itemsByName     map[string]id.ItemTypeId
	recipesByName   map[string]id.RecipeId
	buildingsByName map[string]id.BuildingTypeId
}

// NewBuilder creates an empty registry builder.
func NewBuilder() *Builder {
	return &Builder{
		itemsByName:     make(map[string]id.ItemTypeId),
		recipesByName:   make(map[string]id.RecipeId),
		buildingsByName: make(map[string]id.BuildingTypeId),
	}
}

// RegisterItem registers an item type with the given property schema and
// returns its assigned id. Property ids are assigned in slice order.
func (b *Builder) RegisterItem(name string, properties []PropertyDef) (id.ItemTypeId, error) {
	if _, exists := b.itemsByName[name]; exists {
		return 0, errf("RegisterItem", "duplicate item name %q", name)
	}
	itemID := id.ItemTypeId(len(b.items))
	for i := range properties {
		properties[i].ID = id.PropertyId(i)
	}
	b.items = append(b.items, ItemDef{ID: itemID, Name: name, Properties: properties})
	b.itemsByName[name] = itemID
	return itemID, nil
}

// RegisterRecipe registers a recipe and returns its assigned id. Every item
// referenced by an input or output entry must already be registered.
func (b *Builder) RegisterRecipe(name string, inputs, outputs []RecipeEntry, duration uint64) (id.RecipeId, error) {
	if _, exists := b.recipesByName[name]; exists {
		return 0, errf("RegisterRecipe", "duplicate recipe name %q", name)
	}
	for _, e := range inputs {
		if int(e.Item) >= len(b.items) {
			return 0, errf("RegisterRecipe", "recipe %q: unknown input item id %d", name, e.Item)
		}
	}
	for _, e := range outputs {
		if int(e.Item) >= len(b.items) {
			return 0, errf("RegisterRecipe", "recipe %q: unknown output item id %d", name, e.Item)
		}
	}
	recipeID := id.RecipeId(len(b.recipes))
	b.recipes = append(b.recipes, RecipeDef{
		ID: recipeID, Name: name, Inputs: inputs, Outputs: outputs, Duration: duration,
	})
	b.recipesByName[name] = recipeID
	return recipeID, nil
}

// RegisterBuilding registers a building template and returns its assigned
// id. recipe is nil for buildings that do not run a fixed recipe.
func (b *Builder) RegisterBuilding(name string, recipe *id.RecipeId) (id.BuildingTypeId, error) {
	if _, exists := b.buildingsByName[name]; exists {
		return 0, errf("RegisterBuilding", "duplicate building name %q", name)
	}
	if recipe != nil && int(*recipe) >= len(b.recipes) {
		return 0, errf("RegisterBuilding", "building %q: unknown recipe id %d", name, *recipe)
	}
	buildingID := id.BuildingTypeId(len(b.buildings))
	b.buildings = append(b.buildings, BuildingDef{ID: buildingID, Name: name, Recipe: recipe})
	b.buildingsByName[name] = buildingID
	return buildingID, nil
}

// Build finalizes the builder into an immutable Registry. The builder must
// not be used afterward.
func (b *Builder) Build() *Registry {
	return &Registry{
		items:           b.items,
		recipes:         b.recipes,
		buildings:       b.buildings,
		itemsByName:     b.itemsByName,
		recipesByName:   b.recipesByName,
		buildingsByName: b.buildingsByName,
	}
}
