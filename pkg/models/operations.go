package models

// Identifiers of the fixed operation catalog.
const (
	OpAddAxiom                 OperationID = "add-axiom"
	OpRemoveAxiom              OperationID = "remove-axiom"
	OpAddOntologyAnnotation    OperationID = "add-ontology-annotation"
	OpRemoveOntologyAnnotation OperationID = "remove-ontology-annotation"
	OpAddImport                OperationID = "add-import"
	OpRemoveImport             OperationID = "remove-import"
	OpModifyOntologyIRI        OperationID = "modify-ontology-iri"
	OpAddUser                  OperationID = "add-user"
	OpRemoveUser               OperationID = "remove-user"
	OpModifyUser               OperationID = "modify-user"
	OpAddProject               OperationID = "add-project"
	OpRemoveProject            OperationID = "remove-project"
	OpModifyProject            OperationID = "modify-project"
	OpOpenProject              OperationID = "open-project"
	OpAddRole                  OperationID = "add-role"
	OpRemoveRole               OperationID = "remove-role"
	OpModifyRole               OperationID = "modify-role"
	OpAddOperation             OperationID = "add-operation"
	OpRemoveOperation          OperationID = "remove-operation"
	OpModifyOperation          OperationID = "modify-operation"
	OpAssignRole               OperationID = "assign-role"
	OpRetractRole              OperationID = "retract-role"
	OpStopServer               OperationID = "stop-server"
	OpModifyServerSettings     OperationID = "modify-server-settings"
)

var catalog = []Operation{
	{OpAddAxiom, "Add axiom", "Add an axiom to the ontology", OperationWrite},
	{OpRemoveAxiom, "Remove axiom", "Remove an axiom from the ontology", OperationWrite},
	{OpAddOntologyAnnotation, "Add ontology annotation", "Annotate the ontology", OperationWrite},
	{OpRemoveOntologyAnnotation, "Remove ontology annotation", "Remove an ontology annotation", OperationWrite},
	{OpAddImport, "Add import", "Import another ontology", OperationWrite},
	{OpRemoveImport, "Remove import", "Remove an imported ontology", OperationWrite},
	{OpModifyOntologyIRI, "Modify ontology IRI", "Change the ontology identifier", OperationWrite},
	{OpAddUser, "Add user", "Register a new user", OperationExecute},
	{OpRemoveUser, "Remove user", "Remove a registered user", OperationExecute},
	{OpModifyUser, "Modify user", "Change user details", OperationExecute},
	{OpAddProject, "Add project", "Create a new project", OperationExecute},
	{OpRemoveProject, "Remove project", "Delete a project", OperationExecute},
	{OpModifyProject, "Modify project", "Change project details", OperationExecute},
	{OpOpenProject, "Open project", "Open a project", OperationRead},
	{OpAddRole, "Add role", "Define a new role", OperationExecute},
	{OpRemoveRole, "Remove role", "Delete a role", OperationExecute},
	{OpModifyRole, "Modify role", "Change a role", OperationExecute},
	{OpAddOperation, "Add operation", "Define a new operation", OperationExecute},
	{OpRemoveOperation, "Remove operation", "Delete an operation", OperationExecute},
	{OpModifyOperation, "Modify operation", "Change an operation", OperationExecute},
	{OpAssignRole, "Assign role", "Assign a role to a user on a project", OperationExecute},
	{OpRetractRole, "Retract role", "Retract a role from a user on a project", OperationExecute},
	{OpStopServer, "Stop server", "Stop the server", OperationExecute},
	{OpModifyServerSettings, "Modify server settings", "Change the server configuration", OperationExecute},
}

// Catalog returns a copy of the fixed operation catalog.
func Catalog() []Operation {
	return append([]Operation(nil), catalog...)
}

func LookupOperation(id OperationID) (Operation, bool) {
	for _, op := range catalog {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}
