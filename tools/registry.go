package tools

import (
	"fmt"
	"sort"

	"foodagent"
	"foodagent/catalog"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// Deps are the services the tools run against.
type Deps struct {
	Catalog     *catalog.Catalog
	Profiles    foodagent.ProfileProvider
	Recommender Recommender
	Orders      OrderHistory
	Plans       PlanReader
}

// NewRegistry registers every tool whose dependencies are present.
func NewRegistry(deps Deps) (*Registry, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("tool registry needs a catalog")
	}
	if deps.Profiles == nil {
		deps.Profiles = foodagent.StaticProfile{}
	}

	tools := map[string]Tool{
		"catalog_search": NewCatalogSearch(deps.Catalog),
		"allergen_check": NewAllergenCheck(deps.Catalog, deps.Profiles),
	}
	if deps.Recommender != nil {
		tools["recommend"] = NewRecommend(deps.Recommender, deps.Profiles, deps.Orders)
	}
	if deps.Plans != nil {
		tools["shopping_list"] = NewShoppingList(deps.Plans, deps.Catalog)
	}

	registry := Registry(tools)
	return &registry, nil
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name() < tools[j].Name() })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}
