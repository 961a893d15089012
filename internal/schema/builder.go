package schema

// Entity categories surfaced by the checkout projection.
const (
	CategoryWorkflow  = "workflow"
	CategoryDataModel = "data_model"
	CategoryRecord    = "record"
)

// Builder returns the registry for the builder object store: one RowSchema
// per entity kind the store manages. Applications are deliberately absent,
// they are the scope root and never flow through the interceptor.
func Builder() *Registry {
	r := NewRegistry()
	for _, s := range []RowSchema{
		{
			Table:            "workflows",
			PrimaryKeyColumn: "id",
			Category:         CategoryWorkflow,
			ForeignKeys: []ForeignKey{
				{Column: "app_id", RefTable: "applications", RefColumn: "id"},
			},
		},
		{
			Table:            "workflow_steps",
			PrimaryKeyColumn: "id",
			Category:         CategoryWorkflow,
			ForeignKeys: []ForeignKey{
				{Column: "app_id", RefTable: "applications", RefColumn: "id"},
				{Column: "workflow_id", RefTable: "workflows", RefColumn: "id"},
			},
		},
		{
			Table:            "data_models",
			PrimaryKeyColumn: "id",
			Category:         CategoryDataModel,
			ForeignKeys: []ForeignKey{
				{Column: "app_id", RefTable: "applications", RefColumn: "id"},
			},
		},
		{
			Table:            "model_fields",
			PrimaryKeyColumn: "id",
			Category:         CategoryDataModel,
			ForeignKeys: []ForeignKey{
				{Column: "app_id", RefTable: "applications", RefColumn: "id"},
				{Column: "model_id", RefTable: "data_models", RefColumn: "id"},
			},
		},
		{
			Table:            "records",
			PrimaryKeyColumn: "id",
			Category:         CategoryRecord,
			ForeignKeys: []ForeignKey{
				{Column: "app_id", RefTable: "applications", RefColumn: "id"},
				{Column: "model_id", RefTable: "data_models", RefColumn: "id"},
			},
		},
	} {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}
