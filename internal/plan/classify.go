package plan

import "inkwell/internal/model"

// kindShapes routes a single requested content kind to its workflow shape.
var kindShapes = map[model.ContentType]Shape{
	model.ContentTypeArticle:      ShapeSingleTrack,
	model.ContentTypeBlogPost:     ShapeSingleTrack,
	model.ContentTypeWhitepaper:   ShapeSingleTrack,
	model.ContentTypeCaseStudy:    ShapeSingleTrack,
	model.ContentTypePresentation: ShapePresentation,
	model.ContentTypeSocialPost:   ShapeSocialOnly,
	model.ContentTypeEmail:        ShapeEmailSequence,
	model.ContentTypeNewsletter:   ShapeEmailSequence,
}

// Classify selects the workflow shape for a request. The decision is a fixed
// table, not inference: more than one requested kind is always a multi-target
// campaign; a single kind routes through kindShapes; anything unrecognized
// falls back to single-track production.
func Classify(req model.Request) Shape {
	if len(req.ContentTypes) > 1 {
		return ShapeMultiTarget
	}
	if len(req.ContentTypes) == 0 {
		return ShapeSingleTrack
	}
	if shape, ok := kindShapes[req.ContentTypes[0]]; ok {
		return shape
	}
	return ShapeSingleTrack
}
