package semantics

// PickModels keeps the models of mdl whose name is in selected, in mdl order. Names
// that do not exist in mdl are ignored.
func PickModels(mdl MDL, selected []string) []PickedModel {
	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		wanted[name] = struct{}{}
	}

	picked := make([]PickedModel, 0, len(selected))
	for _, model := range mdl.Models {
		if _, ok := wanted[model.Name]; !ok {
			continue
		}
		picked = append(picked, PickedModel{
			Name:       model.Name,
			Columns:    model.Columns,
			Properties: model.Properties,
		})
	}
	return picked
}
