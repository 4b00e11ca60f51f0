package semantics

func createTestMDL() MDL {
	return MDL{
		Catalog: "memory",
		Schema:  "tpch",
		Models: []Model{
			{
				Name: "customers",
				Columns: []Column{
					{Name: "custkey", Type: "INTEGER", NotNull: true, Properties: map[string]interface{}{}},
					{Name: "name", Type: "VARCHAR", NotNull: true, Properties: map[string]interface{}{}},
				},
				Properties: map[string]interface{}{},
				PrimaryKey: "custkey",
			},
			{
				Name: "products",
				Columns: []Column{
					{Name: "sku", Type: "VARCHAR", NotNull: true, Properties: map[string]interface{}{}},
				},
				Properties: map[string]interface{}{"owner": "catalog-team"},
			},
			{
				Name: "orders",
				Columns: []Column{
					{Name: "orderkey", Type: "INTEGER", NotNull: true, Properties: map[string]interface{}{}},
					{Name: "custkey", Type: "INTEGER", NotNull: false, Properties: map[string]interface{}{}},
					{Name: "totalprice", Type: "DOUBLE", NotNull: false, Properties: map[string]interface{}{}},
				},
				Properties: map[string]interface{}{},
				PrimaryKey: "orderkey",
			},
		},
	}
}
