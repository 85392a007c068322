package gopresentation

// OOXML namespaces shared by every writer_*.go / reader_*.go template.
const (
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsOfficeDocRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRelationships  = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes   = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsChart          = "http://schemas.openxmlformats.org/drawingml/2006/chart"
)

// Relationship types referenced by both the writer and the reader.
const (
	relTypeSlide         = nsOfficeDocRels + "/slide"
	relTypeSlideLayout   = nsOfficeDocRels + "/slideLayout"
	relTypeSlideMaster   = nsOfficeDocRels + "/slideMaster"
	relTypeTheme         = nsOfficeDocRels + "/theme"
	relTypeImage         = nsOfficeDocRels + "/image"
	relTypeChart         = nsOfficeDocRels + "/chart"
	relTypeChartUserShapes = nsOfficeDocRels + "/chartUserShapes"
	relTypeNotesSlide    = nsOfficeDocRels + "/notesSlide"
	relTypeNotesMaster   = nsOfficeDocRels + "/notesMaster"
	relTypeComment       = nsOfficeDocRels + "/comments"
	relTypePresProps     = nsOfficeDocRels + "/presProps"
	relTypeViewProps     = nsOfficeDocRels + "/viewProps"
	relTypeTableStyles   = nsOfficeDocRels + "/tableStyles"
	relTypeCoreProps     = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeExtProps      = nsOfficeDocRels + "/extended-properties"
	relTypePackage       = nsOfficeDocRels + "/officeDocument"
)

// Content-type strings for the [Content_Types].xml overrides.
const (
	ctPresentation = "application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"
	ctSlide        = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	ctSlideLayout  = "application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"
	ctSlideMaster  = "application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"
	ctTheme        = "application/vnd.openxmlformats-officedocument.theme+xml"
	ctChart        = "application/vnd.openxmlformats-officedocument.drawingml.chart+xml"
	ctPresProps    = "application/vnd.openxmlformats-officedocument.presentationml.presProps+xml"
	ctViewProps    = "application/vnd.openxmlformats-officedocument.presentationml.viewProps+xml"
	ctTableStyles  = "application/vnd.openxmlformats-officedocument.presentationml.tableStyles+xml"
	ctCoreProps    = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtProps     = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctPNG          = "image/png"
	ctJPEG         = "image/jpeg"
)
