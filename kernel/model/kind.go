package model

// Kind identifies a resource class handled by one upload slot.
type Kind string

const (
	ProductMaster        Kind = "product-master"
	CustomerMaster       Kind = "customer-master"
	SealTemplate         Kind = "seal-template"
	CountSheetTemplate   Kind = "count-sheet-template"
	DeliveryNoteTemplate Kind = "delivery-note-template"
	OrderInvoice         Kind = "order-invoice"
	SealLabels           Kind = "seal-labels"
)

// Group ties kinds to the metadata they invalidate on success.
type Group string

const (
	GroupMaster     Group = "master"
	GroupTemplate   Group = "template"
	GroupConversion Group = "conversion"
)

// HasMetadata reports whether the group has server-side metadata to refresh.
func (g Group) HasMetadata() bool {
	return g == GroupMaster || g == GroupTemplate
}

type KindSpec struct {
	Kind  Kind
	Group Group
	Label string
	// WireType is the backend's "type" query value. Empty for conversion jobs.
	WireType string
	// Accept is a file picker hint only; content is never checked locally.
	Accept string
}

func init() {
	RegisterKind(ProductMaster, func() *KindSpec {
		return &KindSpec{Kind: ProductMaster, Group: GroupMaster, Label: "product master", WireType: "product", Accept: ".csv"}
	})
	RegisterKind(CustomerMaster, func() *KindSpec {
		return &KindSpec{Kind: CustomerMaster, Group: GroupMaster, Label: "customer master", WireType: "customer", Accept: ".csv"}
	})
	RegisterKind(SealTemplate, func() *KindSpec {
		return &KindSpec{Kind: SealTemplate, Group: GroupTemplate, Label: "seal template", WireType: "seal", Accept: ".xlsx"}
	})
	RegisterKind(CountSheetTemplate, func() *KindSpec {
		return &KindSpec{Kind: CountSheetTemplate, Group: GroupTemplate, Label: "count sheet template", WireType: "suudashiyo", Accept: ".xlsm"}
	})
	RegisterKind(DeliveryNoteTemplate, func() *KindSpec {
		return &KindSpec{Kind: DeliveryNoteTemplate, Group: GroupTemplate, Label: "delivery note template", WireType: "nouhinsyo", Accept: ".xlsx"}
	})
	RegisterKind(OrderInvoice, func() *KindSpec {
		return &KindSpec{Kind: OrderInvoice, Group: GroupConversion, Label: "order conversion", Accept: "application/pdf"}
	})
	RegisterKind(SealLabels, func() *KindSpec {
		return &KindSpec{Kind: SealLabels, Group: GroupConversion, Label: "seal label conversion", Accept: "application/pdf"}
	})
}
